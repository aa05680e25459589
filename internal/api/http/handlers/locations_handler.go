package handlers

import (
	"bytes"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/dedirosandiaj/problem-log-new/internal/api/dto"
	"github.com/dedirosandiaj/problem-log-new/internal/domain"
	"github.com/dedirosandiaj/problem-log-new/internal/service"
	apperrors "github.com/dedirosandiaj/problem-log-new/pkg/util/errorutil"
)

// LocationsHandler manages terminal sites.
type LocationsHandler struct {
	service *service.LocationService
}

// NewLocationsHandler constructs handler.
func NewLocationsHandler(locations *service.LocationService) *LocationsHandler {
	return &LocationsHandler{service: locations}
}

// List GET /api/locations?search=.
func (h *LocationsHandler) List(c *fiber.Ctx) error {
	locations, err := h.service.List(c.UserContext(), c.Query("search"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": locationResponses(locations)})
}

// Lookup GET /api/locations/lookup?q=.
func (h *LocationsHandler) Lookup(c *fiber.Ctx) error {
	locations, err := h.service.Lookup(c.UserContext(), c.Query("q"), queryInt(c, "limit", terminalLookupLimit))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": locationResponses(locations)})
}

// Get GET /api/locations/:id.
func (h *LocationsHandler) Get(c *fiber.Ctx) error {
	location, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewLocationResponse(location)})
}

// Create POST /api/locations.
func (h *LocationsHandler) Create(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.LocationRequest
	if err := dto.Bind(c, &req); err != nil {
		return err
	}
	location, err := h.service.Create(c.UserContext(), actor, locationInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewLocationResponse(location)})
}

// Update PUT /api/locations/:id.
func (h *LocationsHandler) Update(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.LocationRequest
	if err := dto.Bind(c, &req); err != nil {
		return err
	}
	location, err := h.service.Update(c.UserContext(), actor, c.Params("id"), locationInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewLocationResponse(location)})
}

// Delete DELETE /api/locations/:id.
func (h *LocationsHandler) Delete(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Import POST /api/locations/import with a multipart "file" field.
func (h *LocationsHandler) Import(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	header, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewValidationError("csv file required", map[string]any{"file": "required"})
	}
	file, err := header.Open()
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	defer file.Close()

	result, err := h.service.Import(c.UserContext(), actor, file)
	if err != nil {
		return err
	}
	skipped := result.Skipped
	if skipped == nil {
		skipped = []string{}
	}
	return c.JSON(fiber.Map{"data": dto.ImportResponse{Success: result.Success, Skipped: skipped}})
}

// Template GET /api/locations/template.
func (h *LocationsHandler) Template(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.service.WriteTemplate(&buf); err != nil {
		return apperrors.NewInternalError(err)
	}
	return sendCSV(c, service.LocationTemplateFilename, &buf)
}

// Export GET /api/locations/export.
func (h *LocationsHandler) Export(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	filename, err := h.service.Export(c.UserContext(), actor, &buf)
	if err != nil {
		return err
	}
	return sendCSV(c, filename, &buf)
}

func locationResponses(locations []domain.Location) []dto.LocationResponse {
	items := make([]dto.LocationResponse, 0, len(locations))
	for i := range locations {
		items = append(items, dto.NewLocationResponse(&locations[i]))
	}
	return items
}

func locationInput(req dto.LocationRequest) service.LocationInput {
	return service.LocationInput{
		TerminalID:  req.TerminalID,
		ActivatedOn: req.ActivatedOn,
		RelocatedOn: req.RelocatedOn,
		StoreCode:   req.StoreCode,
		Name:        req.Name,
		Address:     req.Address,
		Region:      req.Region,
		Province:    req.Province,
		StoreDC:     req.StoreDC,
		Coordinates: req.Coordinates,
		OpensAt:     req.OpensAt,
		ClosesAt:    req.ClosesAt,
		FLM:         domain.FLM(req.FLM),
		SLM:         domain.SLM(req.SLM),
		ModemVendor: req.ModemVendor,
		ModemNumber: req.ModemNumber,
		Cleanliness: req.Cleanliness,
		Placement:   domain.Placement(req.Placement),
		BoxType:     req.BoxType,
		MachineType: req.MachineType,
		ATMSerial:   req.ATMSerial,
		UPSVendor:   req.UPSVendor,
		UPSSerial:   req.UPSSerial,
		LCDVendor:   req.LCDVendor,
		LCDSerial:   req.LCDSerial,
		Active:      req.Active,
	}
}
