package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/fumiakihyodo/meiwaproducts/internal/apierror"
	"github.com/fumiakihyodo/meiwaproducts/internal/dto"
	"github.com/fumiakihyodo/meiwaproducts/internal/middleware"
	"github.com/fumiakihyodo/meiwaproducts/internal/service"

	"github.com/gin-gonic/gin"
)

// maxQuoteFileSize caps quote uploads at 20 MiB.
const maxQuoteFileSize = 20 << 20

type PriceHistoriesHandler struct{ svc service.PriceHistoryService }

func NewPriceHistoriesHandler(svc service.PriceHistoryService) *PriceHistoriesHandler {
	return &PriceHistoriesHandler{svc: svc}
}

func (h *PriceHistoriesHandler) Create(c *gin.Context) {
	var req dto.CreatePriceHistoryRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), middleware.GetActor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *PriceHistoriesHandler) List(c *gin.Context) {
	var filter dto.PriceHistoryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PriceHistoriesHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PriceHistoriesHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.UpdatePriceHistoryRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), middleware.GetActor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PriceHistoriesHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), middleware.GetActor(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadQuote attaches the multipart "file" field as the row's quotation.
func (h *PriceHistoriesHandler) UploadQuote(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("multipart field 'file' is required"))
		return
	}
	if fileHeader.Size > maxQuoteFileSize {
		c.JSON(http.StatusRequestEntityTooLarge, apierror.New("quote file exceeds 20 MiB"))
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("cannot read uploaded file"))
		return
	}
	defer f.Close()

	resp, err := h.svc.UploadQuote(
		c.Request.Context(),
		middleware.GetActor(c),
		id,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		f,
		fileHeader.Size,
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DownloadQuote streams the attached quotation file.
func (h *PriceHistoriesHandler) DownloadQuote(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	rc, contentType, filename, err := h.svc.DownloadQuote(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, rc)
}
