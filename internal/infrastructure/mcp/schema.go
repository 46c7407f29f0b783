package mcp

import (
	"context"
	"encoding/json"

	"github.com/felixgeelhaar/compaudit/pkg/domain/scan"
	"github.com/felixgeelhaar/compaudit/pkg/domain/settings"
	mcplib "github.com/felixgeelhaar/mcp-go"
)

// SchemaVersion is the current MCP tool schema version (semver).
const SchemaVersion = "1.0.0"

const schemaURI = "compaudit://schema"

type schemaResponse struct {
	SchemaVersion string         `json:"schema_version"`
	ServerVersion string         `json:"server_version"`
	Scopes        []scan.Scope   `json:"scopes"`
	SettingKeys   []settings.Key `json:"setting_keys"`
}

func (s *Server) registerSchemaResource() {
	s.mcpServer.Resource(schemaURI).
		Name(schemaURI).
		Description("MCP tool schema version, scan scopes and setting keys").
		MimeType("application/json").
		Handler(func(_ context.Context, _ string, _ map[string]string) (*mcplib.ResourceContent, error) {
			data, err := schemaJSON()
			if err != nil {
				return nil, err
			}
			return &mcplib.ResourceContent{
				URI:      schemaURI,
				MimeType: "application/json",
				Text:     string(data),
			}, nil
		})
}

func schemaJSON() ([]byte, error) {
	return json.Marshal(schemaResponse{
		SchemaVersion: SchemaVersion,
		ServerVersion: Version,
		Scopes:        []scan.Scope{scan.ScopeCurrentPage, scan.ScopeAllPages},
		SettingKeys:   settings.Keys(),
	})
}
