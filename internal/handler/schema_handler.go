package handler

import (
	"github.com/gin-gonic/gin"

	"drawsheet/internal/parser"
	"drawsheet/internal/schema"
)

// SchemaHandler exposes the parameter schema and the instruction built from it.
type SchemaHandler struct {
	schemaName string
	schema     schema.Schema
	opts       parser.NormalizeOptions
}

// NewSchemaHandler creates a new SchemaHandler.
func NewSchemaHandler(schemaName string, s schema.Schema, opts parser.NormalizeOptions) *SchemaHandler {
	return &SchemaHandler{schemaName: schemaName, schema: s, opts: opts}
}

// Get handles GET /api/v1/schema
// @Summary Get the parameter schema
// @Description Return the ordered parameter list, the missing-value policy, and the instruction sent to the backend
// @Tags schema
// @Produce json
// @Success 200 {object} Response{data=SchemaResponse} "Schema"
// @Router /schema [get]
func (h *SchemaHandler) Get(c *gin.Context) {
	RespondOK(c, SchemaResponse{
		Name:          h.schemaName,
		Parameters:    h.schema.Parameters(),
		MissingPolicy: string(h.opts.Missing),
		MissingValue:  h.opts.Missing.Sentinel(),
		StripUnits:    h.opts.StripUnits,
		Instruction:   parser.BuildInstruction(h.schema, h.opts.Missing),
	})
}
