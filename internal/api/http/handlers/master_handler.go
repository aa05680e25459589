package handlers

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/dedirosandiaj/problem-log-new/internal/api/dto"
	"github.com/dedirosandiaj/problem-log-new/internal/auth"
	"github.com/dedirosandiaj/problem-log-new/internal/domain"
	"github.com/dedirosandiaj/problem-log-new/internal/service"
	apperrors "github.com/dedirosandiaj/problem-log-new/pkg/util/errorutil"
)

// MasterDataHandler manages the four reference tables under /api/master/:type.
type MasterDataHandler struct {
	service *service.MasterDataService
}

// NewMasterDataHandler constructs handler.
func NewMasterDataHandler(master *service.MasterDataService) *MasterDataHandler {
	return &MasterDataHandler{service: master}
}

// RequireTypePermission resolves :type and checks the type's own permission.
// Mount it after auth.RequirePermission(domain.PermissionDataMaster).
func (h *MasterDataHandler) RequireTypePermission(c *fiber.Ctx) error {
	profile, err := h.service.Profile(masterType(c))
	if err != nil {
		return err
	}
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if !principal.User.Can(profile.Permission) {
		return apperrors.NewForbidden("missing permission " + string(profile.Permission))
	}
	return c.Next()
}

// List GET /api/master/:type?search=.
func (h *MasterDataHandler) List(c *fiber.Ctx) error {
	items, err := h.service.List(c.UserContext(), masterType(c), c.Query("search"))
	if err != nil {
		return err
	}
	out := make([]dto.MasterItemResponse, 0, len(items))
	for i := range items {
		out = append(out, dto.NewMasterItemResponse(&items[i]))
	}
	return c.JSON(fiber.Map{"data": out})
}

// Create POST /api/master/:type.
func (h *MasterDataHandler) Create(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.MasterItemRequest
	if err := dto.Bind(c, &req); err != nil {
		return err
	}
	item, err := h.service.Create(c.UserContext(), actor, masterType(c), service.MasterItemInput{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewMasterItemResponse(item)})
}

// Update PUT /api/master/:type/:id.
func (h *MasterDataHandler) Update(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.MasterItemRequest
	if err := dto.Bind(c, &req); err != nil {
		return err
	}
	item, err := h.service.Update(c.UserContext(), actor, masterType(c), c.Params("id"), service.MasterItemInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewMasterItemResponse(item)})
}

// Delete DELETE /api/master/:type/:id.
func (h *MasterDataHandler) Delete(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), actor, masterType(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Import POST /api/master/:type/import with a multipart "file" field.
func (h *MasterDataHandler) Import(c *fiber.Ctx) error {
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

	imported, err := h.service.Import(c.UserContext(), actor, masterType(c), file)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ImportResponse{Success: imported, Skipped: []string{}}})
}

// Template GET /api/master/:type/template.
func (h *MasterDataHandler) Template(c *fiber.Ctx) error {
	t := masterType(c)
	var buf bytes.Buffer
	if err := h.service.WriteTemplate(&buf, t); err != nil {
		return err
	}
	return sendCSV(c, "template_"+strings.ToLower(string(t))+".csv", &buf)
}

// Export GET /api/master/:type/export.
func (h *MasterDataHandler) Export(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	filename, err := h.service.Export(c.UserContext(), actor, masterType(c), &buf)
	if err != nil {
		return err
	}
	return sendCSV(c, filename, &buf)
}

func masterType(c *fiber.Ctx) domain.MasterType {
	return domain.MasterType(strings.ToUpper(c.Params("type")))
}
