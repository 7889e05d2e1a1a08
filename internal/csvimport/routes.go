package csvimport

import (
	"strings"

	"github.com/sirupsen/logrus"

	"hamilton_tms/internal/dispatch"
	"hamilton_tms/internal/models"
)

// routeRow is one grouped route candidate; the first row seen for a
// route_number wins its provider/area metadata.
type routeRow struct {
	routeNumber     string
	providerName    string
	providerContact string
	providerPhone   string
	areaName        string
}

// ImportRoutes processes a route CSV: rows are grouped by route_number,
// providers and areas are found or created by case-insensitive name, and
// route numbers that already exist are rejected per row. Routes land under
// the first school in the system; the pipeline is single-school-biased.
func ImportRoutes(engine *dispatch.Engine, content string) Result {
	var result Result
	st := engine.Store()

	_, rows, err := readAll(content)
	if err != nil {
		result.errorf("Error reading CSV file: %v", err)
		return result
	}

	schools, err := st.GetAllSchools()
	if err != nil {
		result.errorf("Error loading schools: %v", err)
		return result
	}
	if len(schools) == 0 {
		result.errorf("No schools found in the system. Please add a school first.")
		return result
	}
	defaultSchool := schools[0]

	grouped := map[string]routeRow{}
	var order []string
	for i, r := range rows {
		rowNum := i + 2
		routeNumber := r.get("route_number", "Route Name", "route_name")
		providerName := r.get("provider_name", "Provider Name")
		areaName := r.get("area_name", "Area", "area")

		if routeNumber == "" && providerName == "" && areaName == "" {
			continue
		}
		if routeNumber == "" {
			result.errorf("Row %d: Route number is required", rowNum)
			continue
		}
		if _, seen := grouped[routeNumber]; seen {
			continue // first occurrence wins
		}
		if providerName == "" {
			providerName = "To Be Assigned"
		}
		grouped[routeNumber] = routeRow{
			routeNumber:     routeNumber,
			providerName:    providerName,
			providerContact: r.get("provider_contact", "Provider Contact"),
			providerPhone:   r.get("provider_phone", "Provider Phone"),
			areaName:        areaName,
		}
		order = append(order, routeNumber)
	}

	existingRoutes, err := st.GetAllRoutes()
	if err != nil {
		result.errorf("Error loading routes: %v", err)
		return result
	}
	existingNumbers := map[string]bool{}
	for _, r := range existingRoutes {
		existingNumbers[r.RouteNumber] = true
	}

	for _, key := range order {
		info := grouped[key]
		if existingNumbers[info.routeNumber] {
			result.errorf("Route number %q already exists", info.routeNumber)
			continue
		}

		providerID, created, err := findOrCreateProvider(engine, info)
		if err != nil {
			result.errorf("Error creating route %q: %v", info.routeNumber, err)
			continue
		}
		if created {
			result.successf("Created new provider: %q", info.providerName)
		}

		areaID, createdArea, areaName, err := findOrCreateArea(engine, info.areaName, defaultSchool.ID)
		if err != nil {
			result.errorf("Error creating route %q: %v", info.routeNumber, err)
			continue
		}
		if createdArea {
			result.successf("Created new area: %q", areaName)
		}

		route := &models.Route{
			RouteNumber: info.routeNumber,
			ProviderID:  providerID,
			AreaID:      areaID,
			SchoolID:    defaultSchool.ID,
		}
		if err := st.CreateRoute(route); err != nil {
			result.errorf("Error creating route %q: %v", info.routeNumber, err)
			continue
		}
		existingNumbers[info.routeNumber] = true
		result.successf("Route %q created successfully", info.routeNumber)
	}

	if len(result.Success) > 0 {
		if err := st.Commit(); err != nil {
			result.errorf("Error saving imported routes: %v", err)
		}
	}
	logrus.WithFields(logrus.Fields{
		"imported": len(result.Success),
		"errors":   len(result.Errors),
	}).Info("routes CSV processed")
	return result
}

func findOrCreateProvider(engine *dispatch.Engine, info routeRow) (string, bool, error) {
	st := engine.Store()
	providers, err := st.GetAllProviders()
	if err != nil {
		return "", false, err
	}
	for _, p := range providers {
		if strings.EqualFold(p.Name, info.providerName) {
			return p.ID, false, nil
		}
	}
	contact := info.providerContact
	phone := info.providerPhone
	if contact == "" {
		contact = "Contact Required"
	}
	if phone == "" {
		phone = "Phone Required"
	}
	p := &models.Provider{Name: info.providerName, ContactName: contact, Phone: phone}
	if err := st.CreateProvider(p); err != nil {
		return "", false, err
	}
	return p.ID, true, nil
}

func findOrCreateArea(engine *dispatch.Engine, areaName, schoolID string) (string, bool, string, error) {
	st := engine.Store()
	areas, err := st.GetAllAreas()
	if err != nil {
		return "", false, "", err
	}
	if areaName != "" {
		for _, a := range areas {
			if strings.EqualFold(a.Name, areaName) {
				return a.ID, false, a.Name, nil
			}
		}
		a := &models.Area{Name: areaName, SchoolID: schoolID}
		if err := st.CreateArea(a); err != nil {
			return "", false, "", err
		}
		return a.ID, true, areaName, nil
	}
	// No area given: reuse any existing area, or seed a default one.
	if len(areas) > 0 {
		return areas[0].ID, false, areas[0].Name, nil
	}
	a := &models.Area{Name: "Main Area", SchoolID: schoolID}
	if err := st.CreateArea(a); err != nil {
		return "", false, "", err
	}
	return a.ID, true, "Main Area", nil
}

// RoutesTemplate returns the downloadable CSV template for routes.
func RoutesTemplate() string {
	return strings.Join([]string{
		"route_number,provider_name,provider_contact,provider_phone,area_name",
		"R001,HATS Transport,John Smith,01234 567890,Secondary",
	}, "\n") + "\n"
}
