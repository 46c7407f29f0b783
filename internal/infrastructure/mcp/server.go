package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/compaudit/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/compaudit/pkg/application"
	"github.com/felixgeelhaar/compaudit/pkg/domain/scan"
	"github.com/felixgeelhaar/compaudit/pkg/domain/settings"
	"github.com/felixgeelhaar/mcp-go"
)

type Server struct {
	mcpServer    *mcp.Server
	scanSvc      *application.ScanService
	settingsSvc  *application.SettingsService
	viewSvc      *application.ViewService
	navSvc       *application.NavigationService
	reportSvc    *application.ReportService
	sessionSvc   *application.SessionService
	auditSvc     *application.AuditService
	defaultScope scan.Scope
}

var (
	Version     = "dev"
	BuildCommit = "unknown"
	BuildDate   = "unknown"
)

// mcpErr returns a user-friendly error for MCP clients.
func mcpErr(friendly string) error {
	return fmt.Errorf("%s", friendly)
}

// NewServer opens the workspace under root and serves it.
func NewServer(ctx context.Context, root string, opts wiring.Options) (*Server, error) {
	if opts.Actor == "" {
		opts.Actor = "mcp"
	}
	services, err := wiring.BuildAppServices(ctx, root, opts)
	if err != nil {
		return nil, fmt.Errorf("build services: %w", err)
	}
	return NewServerWithServices(services), nil
}

func NewServerWithServices(services *wiring.AppServices) *Server {
	info := mcp.ServerInfo{
		Name:    "compaudit",
		Version: Version,
	}

	s := &Server{
		mcpServer: mcp.NewServer(info,
			mcp.WithTitle("Component Audit MCP Server"),
			mcp.WithDescription("Audits the components of a design document export for missing metadata and hardcoded values."),
			mcp.WithBuildInfo(BuildCommit, BuildDate),
			mcp.WithInstructions("Run a quick scan for an overview, then a deep scan for per-component findings. Use settings to narrow the results."),
		),
		scanSvc:      services.Scan,
		settingsSvc:  services.Settings,
		viewSvc:      services.View,
		navSvc:       services.Navigation,
		reportSvc:    services.Report,
		sessionSvc:   services.Session,
		auditSvc:     services.Audit,
		defaultScope: services.Workspace.Config.DefaultScope,
	}

	s.registerTools()
	s.registerSchemaResource()
	return s
}

type DeepScanArgs struct {
	Scope string `json:"scope,omitempty" jsonschema:"description=current-page or all-pages (defaults to the configured scope)"`
}

type PageArgs struct {
	Page string `json:"page" jsonschema:"description=The page name as shown in the results"`
}

type ComponentArgs struct {
	ComponentID string `json:"component_id" jsonschema:"description=The component id"`
}

type SettingArgs struct {
	Key string `json:"key" jsonschema:"description=The setting key, e.g. fill or missingDescription"`
}

type SetSettingArgs struct {
	Key     string `json:"key" jsonschema:"description=The setting key"`
	Enabled bool   `json:"enabled" jsonschema:"description=The new state"`
}

type LocateArgs struct {
	ComponentID string `json:"component_id" jsonschema:"description=The component id"`
	NodeID      string `json:"node_id,omitempty" jsonschema:"description=A node inside the component; wins over component_id"`
}

func (s *Server) registerTools() {
	s.mcpServer.Tool("compaudit_quick_scan").
		Description("Count components, variants and missing metadata across the whole document").
		Handler(s.handleQuickScan)

	s.mcpServer.Tool("compaudit_deep_scan").
		Description("Audit every component of the current page or of all pages for missing metadata and hardcoded values").
		Handler(s.handleDeepScan)

	s.mcpServer.Tool("compaudit_scan_all_pages").
		Description("Run a quick scan followed by a deep scan of all pages").
		Handler(s.handleScanAllPages)

	s.mcpServer.Tool("compaudit_rescan").
		Description("Repeat the last scan").
		Handler(s.handleRescan)

	s.mcpServer.Tool("compaudit_toggle_scope").
		Description("Switch deep scans between the current page and all pages").
		Handler(s.handleToggleScope)

	s.mcpServer.Tool("compaudit_status").
		Description("Show the scan state, progress and counts of the session").
		Handler(s.handleStatus)

	s.mcpServer.Tool("compaudit_get_results").
		Description("Retrieve the filtered deep scan results grouped by page").
		Handler(s.handleGetResults)

	s.mcpServer.Tool("compaudit_load_more").
		Description("Show more components of a page").
		Handler(s.handleLoadMore)

	s.mcpServer.Tool("compaudit_load_all").
		Description("Show every component of a page").
		Handler(s.handleLoadAll)

	s.mcpServer.Tool("compaudit_toggle_page").
		Description("Expand or collapse a page in the results").
		Handler(s.handleTogglePage)

	s.mcpServer.Tool("compaudit_toggle_component").
		Description("Expand or collapse the findings of a component").
		Handler(s.handleToggleComponent)

	s.mcpServer.Tool("compaudit_get_summary").
		Description("Retrieve the quick scan summary as text").
		Handler(s.handleGetSummary)

	s.mcpServer.Tool("compaudit_report").
		Description("Render the current results as a markdown report").
		Handler(s.handleReport)

	s.mcpServer.Tool("compaudit_get_settings").
		Description("List the filter toggles and their state").
		Handler(s.handleGetSettings)

	s.mcpServer.Tool("compaudit_toggle_setting").
		Description("Flip a filter toggle; group toggles flip their children").
		Handler(s.handleToggleSetting)

	s.mcpServer.Tool("compaudit_set_setting").
		Description("Set a filter toggle to a given state").
		Handler(s.handleSetSetting)

	s.mcpServer.Tool("compaudit_reset_settings").
		Description("Restore the default filter toggles").
		Handler(s.handleResetSettings)

	s.mcpServer.Tool("compaudit_locate").
		Description("Find where a component or node lives in the document").
		Handler(s.handleLocate)

	s.mcpServer.Tool("compaudit_reset").
		Description("Clear the session and restore the default settings").
		Handler(s.handleReset)

	s.mcpServer.Tool("compaudit_verify_audit").
		Description("Verify the integrity of the session audit trail").
		Handler(s.handleVerifyAudit)
}

func scanErr(kind string, err error) error {
	switch {
	case errors.Is(err, scan.ErrScanInProgress):
		return mcpErr("A scan is already running. Wait for it to finish and retry.")
	case errors.Is(err, application.ErrNothingToRescan):
		return mcpErr("Nothing to rescan yet. Run a quick or deep scan first.")
	}
	return mcpErr(fmt.Sprintf("The %s scan failed. Check that the document export exists and is valid.", kind))
}

func (s *Server) handleQuickScan(ctx context.Context, args struct{}) (any, error) {
	res, err := s.scanSvc.QuickScan(ctx)
	if err != nil {
		return nil, scanErr("quick", err)
	}
	return map[string]any{
		"summary": res.Summary,
		"text":    res.Summary.Text(),
	}, nil
}

func (s *Server) handleDeepScan(ctx context.Context, args DeepScanArgs) (any, error) {
	raw := args.Scope
	if raw == "" {
		raw = string(s.defaultScope)
	}
	scope, err := scan.ParseScope(raw)
	if err != nil {
		return nil, mcpErr(err.Error())
	}
	res, err := s.scanSvc.DeepScan(ctx, scope)
	if err != nil {
		return nil, scanErr("deep", err)
	}
	return scanOutput(res), nil
}

func (s *Server) handleScanAllPages(ctx context.Context, args struct{}) (any, error) {
	res, err := s.scanSvc.ScanAllPages(ctx)
	if err != nil {
		return nil, scanErr("deep", err)
	}
	return scanOutput(res), nil
}

func (s *Server) handleRescan(ctx context.Context, args struct{}) (any, error) {
	res, err := s.scanSvc.Rescan(ctx)
	if err != nil {
		return nil, scanErr("last", err)
	}
	return scanOutput(res), nil
}

func scanOutput(res *application.ScanResult) map[string]any {
	out := map[string]any{
		"scan_id":    res.ScanID,
		"kind":       res.Kind,
		"components": len(res.Records),
		"pages":      res.Pages,
		"message":    res.Progress.Message,
		"progress":   res.Progress.Pages,
	}
	if res.Scope != "" {
		out["scope"] = res.Scope
	}
	if res.Summary != nil {
		out["summary"] = res.Summary.Text()
	}
	return out
}

func (s *Server) handleToggleScope(ctx context.Context, args struct{}) (string, error) {
	scope, err := s.scanSvc.ToggleScope()
	if err != nil {
		return "", mcpErr("Failed to switch the scan scope.")
	}
	if scope == scan.ScopeCurrentPage {
		return "Deep scans now cover the current page.", nil
	}
	return "Deep scans now cover all pages.", nil
}

func (s *Server) handleStatus(ctx context.Context, args struct{}) (any, error) {
	st, err := s.sessionSvc.Status()
	if err != nil {
		return nil, mcpErr("Failed to load the session status.")
	}
	return map[string]any{
		"status": st,
		"busy":   s.scanSvc.IsBusy(),
	}, nil
}

func (s *Server) handleGetResults(ctx context.Context, args struct{}) (any, error) {
	v, err := s.viewSvc.Current()
	if err != nil {
		return nil, mcpErr("Failed to load the results.")
	}
	return v, nil
}

func (s *Server) viewAction(page string, action func(string) error) (any, error) {
	if strings.TrimSpace(page) == "" {
		return nil, mcpErr("A page name is required.")
	}
	if err := action(page); err != nil {
		return nil, mcpErr("Failed to update the results view.")
	}
	return s.handleGetResults(context.Background(), struct{}{})
}

func (s *Server) handleLoadMore(ctx context.Context, args PageArgs) (any, error) {
	return s.viewAction(args.Page, s.viewSvc.LoadMore)
}

func (s *Server) handleLoadAll(ctx context.Context, args PageArgs) (any, error) {
	return s.viewAction(args.Page, s.viewSvc.LoadAll)
}

func (s *Server) handleTogglePage(ctx context.Context, args PageArgs) (any, error) {
	return s.viewAction(args.Page, s.viewSvc.TogglePage)
}

func (s *Server) handleToggleComponent(ctx context.Context, args ComponentArgs) (any, error) {
	if strings.TrimSpace(args.ComponentID) == "" {
		return nil, mcpErr("A component id is required.")
	}
	if err := s.viewSvc.ToggleComponent(args.ComponentID); err != nil {
		return nil, mcpErr("Failed to update the results view.")
	}
	return s.handleGetResults(ctx, struct{}{})
}

func (s *Server) handleGetSummary(ctx context.Context, args struct{}) (string, error) {
	text, err := s.reportSvc.SummaryText()
	if err != nil {
		return "", mcpErr("Failed to load the summary.")
	}
	if text == "" {
		return "No quick scan has run yet.", nil
	}
	return text, nil
}

func (s *Server) handleReport(ctx context.Context, args struct{}) (string, error) {
	md, err := s.reportSvc.Markdown()
	if err != nil {
		return "", mcpErr("Failed to render the report.")
	}
	return md, nil
}

type settingOutput struct {
	Key     settings.Key `json:"key"`
	Enabled bool         `json:"enabled"`
}

func settingsOutput(st settings.Settings) []settingOutput {
	out := make([]settingOutput, 0, len(st))
	for _, k := range settings.Keys() {
		out = append(out, settingOutput{Key: k, Enabled: st.Enabled(k)})
	}
	return out
}

func settingErr(err error) error {
	var unknown *settings.UnknownKeyError
	if errors.As(err, &unknown) {
		return mcpErr(fmt.Sprintf("Unknown setting %q. Use compaudit_get_settings to list the keys.", unknown.Key))
	}
	return mcpErr("Failed to update the settings.")
}

func (s *Server) handleGetSettings(ctx context.Context, args struct{}) (any, error) {
	st, err := s.settingsSvc.Get()
	if err != nil {
		return nil, mcpErr("Failed to load the settings.")
	}
	return settingsOutput(st), nil
}

func (s *Server) handleToggleSetting(ctx context.Context, args SettingArgs) (any, error) {
	st, err := s.settingsSvc.Toggle(ctx, settings.Key(args.Key))
	if err != nil {
		return nil, settingErr(err)
	}
	return settingsOutput(st), nil
}

func (s *Server) handleSetSetting(ctx context.Context, args SetSettingArgs) (any, error) {
	st, err := s.settingsSvc.Set(ctx, settings.Key(args.Key), args.Enabled)
	if err != nil {
		return nil, settingErr(err)
	}
	return settingsOutput(st), nil
}

func (s *Server) handleResetSettings(ctx context.Context, args struct{}) (any, error) {
	st, err := s.settingsSvc.Reset(ctx)
	if err != nil {
		return nil, settingErr(err)
	}
	return settingsOutput(st), nil
}

func (s *Server) handleLocate(ctx context.Context, args LocateArgs) (any, error) {
	loc, err := s.navSvc.Locate(ctx, args.ComponentID, args.NodeID)
	if err != nil {
		return nil, mcpErr(application.NavigationFailedMessage)
	}
	return loc, nil
}

func (s *Server) handleReset(ctx context.Context, args struct{}) (string, error) {
	if s.scanSvc.IsBusy() {
		return "", mcpErr("A scan is running. Wait for it to finish before resetting.")
	}
	if err := s.sessionSvc.Reset("mcp"); err != nil {
		return "", mcpErr("Failed to reset the session.")
	}
	return "Session cleared and settings restored to defaults.", nil
}

func (s *Server) handleVerifyAudit(ctx context.Context, args struct{}) (any, error) {
	violations, err := s.auditSvc.VerifyIntegrity()
	if err != nil {
		return nil, mcpErr("Failed to read the audit trail.")
	}
	if len(violations) == 0 {
		return "Audit trail is intact and verified.", nil
	}
	return violations, nil
}

func (s *Server) ServeStdio(ctx context.Context) error {
	return mcp.ServeStdio(ctx, s.mcpServer)
}

func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	return mcp.ServeHTTP(ctx, s.mcpServer, addr, mcp.WithDefaultCORS())
}

func (s *Server) ServeWebSocket(ctx context.Context, addr string) error {
	return mcp.ServeWebSocket(ctx, s.mcpServer, addr)
}
