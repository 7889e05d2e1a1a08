package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"hamilton_tms/internal/config"
	"hamilton_tms/internal/middleware"
	"hamilton_tms/internal/models"
)

type signupInput struct {
	Username    string   `json:"username" binding:"required"`
	Password    string   `json:"password" binding:"required"`
	AccountType string   `json:"account_type"`
	Classes     []string `json:"classes"`
}

// SignupUser creates a staff account. Class accounts carry the list of
// class names they are allowed to view.
func SignupUser(c *gin.Context) {
	var input signupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	accountType, err := validateAndNormalizeAccountType(input.AccountType)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input.AccountType = accountType

	hashedPassword, err := hashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not hash password"})
		return
	}

	tx := config.DB.Begin()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start transaction"})
		return
	}

	user := models.User{
		Username:     strings.TrimSpace(input.Username),
		PasswordHash: hashedPassword,
		AccountType:  input.AccountType,
		Active:       true,
	}
	if err := tx.Create(&user).Error; err != nil {
		tx.Rollback()
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			c.JSON(http.StatusConflict, gin.H{"error": "username already in use"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create user: " + err.Error()})
		return
	}

	if err := replaceClassAssignments(tx, &user, input.Classes); err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not assign classes: " + err.Error()})
		return
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not commit transaction: " + err.Error()})
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.AccountType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  prepareUserResponse(user),
	})
}

// LoginUser authenticates by username and password. Deactivated accounts
// are rejected the same way as bad credentials.
func LoginUser(c *gin.Context) {
	var body struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	query := config.DB.Where("username = ?", body.Username).
		Preload("ClassAssignments")

	if err := query.First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found or invalid credentials"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error: " + err.Error()})
		}
		return
	}

	if !user.Active {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found or invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "incorrect password"})
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.AccountType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  prepareUserResponse(user),
	})
}

// ListUsers returns all staff accounts with their class assignments.
func ListUsers(c *gin.Context) {
	var users []models.User
	if err := config.DB.Preload("ClassAssignments").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing users: " + err.Error()})
		return
	}

	out := make([]gin.H, 0, len(users))
	for _, u := range users {
		out = append(out, prepareUserResponse(u))
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

type updateUserInput struct {
	Password *string   `json:"password"`
	Active   *bool     `json:"active"`
	Classes  *[]string `json:"classes"`
}

// UpdateUser resets a password, toggles the active flag, or replaces the
// class assignment list. Fields not sent are left alone.
func UpdateUser(c *gin.Context) {
	id := c.Param("id")

	var user models.User
	if err := config.DB.Preload("ClassAssignments").First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error: " + err.Error()})
		}
		return
	}

	var input updateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx := config.DB.Begin()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start transaction"})
		return
	}

	if input.Password != nil && *input.Password != "" {
		hashed, err := hashPassword(*input.Password)
		if err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not hash password"})
			return
		}
		user.PasswordHash = hashed
	}
	if input.Active != nil {
		user.Active = *input.Active
	}

	if err := tx.Select("PasswordHash", "Active").Save(&user).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update user: " + err.Error()})
		return
	}

	if input.Classes != nil {
		if err := replaceClassAssignments(tx, &user, *input.Classes); err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not assign classes: " + err.Error()})
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not commit transaction: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": prepareUserResponse(user)})
}

// DeleteUser removes a staff account and its class assignments.
func DeleteUser(c *gin.Context) {
	id := c.Param("id")
	result := config.DB.Delete(&models.User{}, "id = ?", id)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete user: " + result.Error.Error()})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}

func validateAndNormalizeAccountType(raw string) (string, error) {
	accountType := strings.ToLower(strings.TrimSpace(raw))
	if accountType == "" {
		accountType = models.AccountTypeClass
	}
	switch accountType {
	case models.AccountTypeAdmin, models.AccountTypeClass:
		return accountType, nil
	default:
		return "", errors.New("invalid account type")
	}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func replaceClassAssignments(tx *gorm.DB, user *models.User, classes []string) error {
	if err := tx.Where("user_id = ?", user.ID).Delete(&models.StaffClassAssignment{}).Error; err != nil {
		return err
	}
	user.ClassAssignments = user.ClassAssignments[:0]
	for _, name := range classes {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		assignment := models.StaffClassAssignment{UserID: user.ID, ClassName: name}
		if err := tx.Create(&assignment).Error; err != nil {
			return err
		}
		user.ClassAssignments = append(user.ClassAssignments, assignment)
	}
	return nil
}

func prepareUserResponse(user models.User) gin.H {
	return gin.H{
		"ID":           user.ID,
		"CreatedAt":    user.CreatedAt,
		"UpdatedAt":    user.UpdatedAt,
		"username":     user.Username,
		"account_type": user.AccountType,
		"active":       user.Active,
		"classes":      user.AssignedClasses(),
	}
}
