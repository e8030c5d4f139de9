package server

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ByLCY/barlabel/labels"
	"github.com/ByLCY/barlabel/layout"
)

// Handler 处理标签相关的 HTTP 请求。
type Handler struct{ svc *labels.Service }

// RegisterRoutes 在 r 下注册规格列表、渲染、PDF 与最近结果的路由。
func RegisterRoutes(r gin.IRoutes, svc *labels.Service) {
	h := &Handler{svc: svc}
	r.GET("/presets", h.ListPresets)
	r.POST("/labels/render", h.Render)
	r.POST("/labels/pdf", h.RenderPDF)
	r.GET("/labels/latest", h.Latest)
	r.GET("/labels/latest/pdf", h.LatestPDF)
}

// ListPresets 返回预设规格目录。
func (h *Handler) ListPresets(c *gin.Context) {
	c.JSON(http.StatusOK, PresetsResponse{Default: layout.DefaultPresetID, Presets: layout.Presets()})
}

// Render 渲染请求中的条目，返回位图、分页与预览信息。
func (h *Handler) Render(c *gin.Context) {
	res, ok := h.generate(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newRenderResponse(res))
}

// RenderPDF 渲染请求中的条目并直接返回 PDF。
func (h *Handler) RenderPDF(c *gin.Context) {
	res, ok := h.generate(c)
	if !ok {
		return
	}
	h.writePDF(c, res)
}

// Latest 返回最近一次发布的结果。
func (h *Handler) Latest(c *gin.Context) {
	res, ok := h.svc.Latest()
	if !ok {
		abort(c, NewNotFoundError("尚未生成任何标签"))
		return
	}
	c.JSON(http.StatusOK, newRenderResponse(res))
}

// LatestPDF 将最近一次发布的结果输出为 PDF。
func (h *Handler) LatestPDF(c *gin.Context) {
	res, ok := h.svc.Latest()
	if !ok {
		abort(c, NewNotFoundError("尚未生成任何标签"))
		return
	}
	h.writePDF(c, res)
}

// generate 绑定请求并执行一次渲染；出错时已写出响应。
func (h *Handler) generate(c *gin.Context) (*layout.Result, bool) {
	var req RenderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, NewInvalidArgumentError("JSON 结构不正确: "+err.Error()))
		return nil, false
	}
	sreq, err := req.toServiceRequest()
	if err != nil {
		abort(c, err)
		return nil, false
	}
	res, err := h.svc.Generate(c.Request.Context(), sreq)
	if err != nil {
		abort(c, err)
		return nil, false
	}
	return res, true
}

func (h *Handler) writePDF(c *gin.Context, res *layout.Result) {
	var buf bytes.Buffer
	if err := h.svc.WritePDF(res, &buf); err != nil {
		abort(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="labels-`+res.BatchID+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

func abort(c *gin.Context, err error) {
	de := toDomainError(err)
	status := toHTTPStatus(de)
	if status >= http.StatusInternalServerError {
		labels.Logger().Error("request failed", "path", c.FullPath(), "err", err)
	}
	c.AbortWithStatusJSON(status, errDTO{Error: de})
}
