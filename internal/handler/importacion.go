package handler

import (
	"net/http"

	"github.com/H-Riv/mundo-cartas/internal/apierror"
	"github.com/H-Riv/mundo-cartas/internal/middleware"
	"github.com/H-Riv/mundo-cartas/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// 10 MB is far beyond any realistic catalog upload.
const maxImportSize = 10 << 20

type ImportacionHandler struct{ svc service.ImportacionService }

func NewImportacionHandler(svc service.ImportacionService) *ImportacionHandler {
	return &ImportacionHandler{svc: svc}
}

// Importar godoc
// @Summary      Importación masiva de productos
// @Description  Recibe un archivo .xlsx o .csv (campo "archivo"). Columnas mínimas: nombre, categoria, precio. SKUs existentes acumulan stock; filas inválidas se reportan sin abortar el resto.
// @Tags         importacion
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        archivo formData file true "Archivo de productos"
// @Success      200  {object} dto.ResumenImportacionResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/importacion [post]
func (h *ImportacionHandler) Importar(c *gin.Context) {
	fileHeader, err := c.FormFile("archivo")
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("archivo requerido"))
		return
	}
	if fileHeader.Size > maxImportSize {
		c.JSON(http.StatusBadRequest, apierror.New("el archivo excede el tamaño máximo (10 MB)"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("no se pudo leer el archivo"))
		return
	}
	defer file.Close()

	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resumen, err := h.svc.Importar(c.Request.Context(), usuarioID, file, fileHeader.Filename)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resumen)
}

// Plantilla streams the import template as an xlsx download.
func (h *ImportacionHandler) Plantilla(c *gin.Context) {
	f, err := h.svc.Plantilla()
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al generar plantilla"))
		return
	}
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="plantilla_productos.xlsx"`)
	if err := f.Write(c.Writer); err != nil {
		log.Error().Err(err).Msg("No se pudo escribir la plantilla xlsx")
	}
}
