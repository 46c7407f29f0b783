package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/felixgeelhaar/compaudit/pkg/domain"
	"github.com/felixgeelhaar/compaudit/pkg/domain/audit"
	"github.com/felixgeelhaar/compaudit/pkg/domain/binding"
	"github.com/felixgeelhaar/compaudit/pkg/domain/document"
	"github.com/felixgeelhaar/compaudit/pkg/domain/events"
	"github.com/felixgeelhaar/compaudit/pkg/domain/scan"
	"github.com/felixgeelhaar/compaudit/pkg/domain/view"
	"github.com/felixgeelhaar/fortify/timeout"
	"github.com/google/uuid"
)

// ErrNothingToRescan is returned by Rescan when no scan has produced data yet.
var ErrNothingToRescan = errors.New("nothing to rescan: run a scan first")

// DocumentSource provides the document being audited.
type DocumentSource interface {
	Document(ctx context.Context) (*document.Document, error)
}

// ScanOptions tunes the pacing of scans. A zero clear delay keeps the
// progress until the next scan.
type ScanOptions struct {
	PageDelay       time.Duration
	SettleDelay     time.Duration
	QuickClearDelay time.Duration
	DeepClearDelay  time.Duration
	// PageTimeout bounds the processing of one page; zero disables it.
	PageTimeout time.Duration
}

func DefaultScanOptions() ScanOptions {
	return ScanOptions{
		PageDelay:       200 * time.Millisecond,
		SettleDelay:     time.Second,
		QuickClearDelay: 2 * time.Second,
		DeepClearDelay:  3 * time.Second,
		PageTimeout:     30 * time.Second,
	}
}

// ScanResult is what a finished scan produced.
type ScanResult struct {
	ScanID   string                  `json:"scanId"`
	Kind     scan.Kind               `json:"kind"`
	Scope    scan.Scope              `json:"scope,omitempty"`
	Records  []audit.Record          `json:"components"`
	Summary  *audit.QuickScanSummary `json:"summary,omitempty"`
	Progress scan.Progress           `json:"progress"`
	Pages    int                     `json:"pages"`
	Duration time.Duration           `json:"duration"`
}

// ScanService runs quick and deep scans and publishes their results to the
// session store as they are produced.
type ScanService struct {
	repo      domain.SessionRepository
	docs      DocumentSource
	publisher events.Publisher
	walker    audit.Walker
	opts      ScanOptions
	logger    *slog.Logger

	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time

	// flow is held for the whole of a scan, including composed ones.
	flow    sync.Mutex
	mu      sync.Mutex
	machine *scan.Machine
	gen     int
	clear   *time.Timer
}

func NewScanService(repo domain.SessionRepository, docs DocumentSource, publisher events.Publisher, opts ScanOptions, logger *slog.Logger) (*ScanService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	machine, err := scan.NewMachine()
	if err != nil {
		return nil, err
	}
	return &ScanService{
		repo:      repo,
		docs:      docs,
		publisher: publisher,
		walker:    binding.NewWalker(logger),
		opts:      opts,
		logger:    logger,
		sleep:     sleepContext,
		now:       time.Now,
		machine:   machine,
	}, nil
}

// SetClock replaces the time source and the sleep used between pages.
func (s *ScanService) SetClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) {
	if now != nil {
		s.now = now
	}
	if sleep != nil {
		s.sleep = sleep
	}
}

// State returns the scan machine state.
func (s *ScanService) State() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.Current()
}

// IsBusy reports whether a scan is running.
func (s *ScanService) IsBusy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.IsBusy()
}

// QuickScan counts components and metadata on every page without walking
// component trees.
func (s *ScanService) QuickScan(ctx context.Context) (*ScanResult, error) {
	if !s.flow.TryLock() {
		return nil, scan.ErrScanInProgress
	}
	defer s.flow.Unlock()
	return s.quickScan(ctx)
}

// DeepScan walks every component of the scope for hardcoded properties.
func (s *ScanService) DeepScan(ctx context.Context, scope scan.Scope) (*ScanResult, error) {
	if !s.flow.TryLock() {
		return nil, scan.ErrScanInProgress
	}
	defer s.flow.Unlock()
	return s.deepScan(ctx, scope)
}

// ScanAllPages runs a quick scan for the summary, waits for it to settle and
// then deep scans every page.
func (s *ScanService) ScanAllPages(ctx context.Context) (*ScanResult, error) {
	if !s.flow.TryLock() {
		return nil, scan.ErrScanInProgress
	}
	defer s.flow.Unlock()

	s.setMessage(scan.MsgInitializing)
	quick, err := s.quickScan(ctx)
	if err != nil && errors.Is(err, scan.ErrScanInProgress) {
		return nil, err
	}
	if err := s.sleep(ctx, s.opts.SettleDelay); err != nil {
		return nil, err
	}

	s.setMessage(scan.MsgStartingAllPages)
	deep, err := s.deepScan(ctx, scan.ScopeAllPages)
	if err != nil {
		return deep, err
	}
	if quick != nil {
		deep.Summary = quick.Summary
	}
	return deep, nil
}

// Rescan repeats the last scan: a quick scan when only quick data exists,
// otherwise a deep scan of the last scope.
func (s *ScanService) Rescan(ctx context.Context) (*ScanResult, error) {
	summary, err := s.repo.LoadSummary()
	if err != nil {
		return nil, fmt.Errorf("load summary: %w", err)
	}
	records, err := s.repo.LoadRecords()
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	info, err := s.repo.LoadScanInfo()
	if err != nil {
		return nil, fmt.Errorf("load scan info: %w", err)
	}

	switch {
	case summary != nil && len(records) == 0:
		return s.QuickScan(ctx)
	case len(records) > 0 && info.CurrentPageOnly:
		return s.DeepScan(ctx, scan.ScopeCurrentPage)
	case len(records) > 0:
		return s.ScanAllPages(ctx)
	}
	return nil, ErrNothingToRescan
}

// ToggleScope flips the persisted scope used by Rescan and returns the new
// scope.
func (s *ScanService) ToggleScope() (scan.Scope, error) {
	info, err := s.repo.LoadScanInfo()
	if err != nil {
		return "", fmt.Errorf("load scan info: %w", err)
	}
	info.CurrentPageOnly = !info.CurrentPageOnly
	if err := s.repo.SaveScanInfo(info); err != nil {
		return "", fmt.Errorf("save scan info: %w", err)
	}
	return scopeOf(info.CurrentPageOnly), nil
}

// ClearProgress drops the progress text and page list and settles the
// machine. It is what the delayed clear runs.
func (s *ScanService) ClearProgress() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearLocked()
}

func (s *ScanService) quickScan(ctx context.Context) (*ScanResult, error) {
	scanID, err := s.begin(scan.KindQuick)
	if err != nil {
		return nil, err
	}
	started := s.now()
	docID := s.documentID()

	if err := s.repo.SaveSummary(nil); err != nil {
		s.logger.Warn("failed to clear quick scan data", "error", err)
	}
	s.setMessage(scan.MsgQuickRunning)

	doc, err := s.docs.Document(ctx)
	if err != nil {
		return nil, s.fail(ctx, scanID, scan.KindQuick, scan.MsgQuickError, err)
	}
	s.publish(ctx, &events.ScanStarted{
		BaseEvent: events.NewBaseEvent(events.EventTypeScanStarted, docID, scanID),
		Kind:      string(scan.KindQuick),
		Pages:     len(doc.Pages),
	})

	currentPage := currentPageName(doc)
	var records []audit.Record
	for _, page := range doc.Pages {
		records = append(records, audit.ProcessPage(page, audit.Quick, currentPage, nil)...)
	}
	summary := audit.Summarize(len(doc.Pages), records)

	if err := s.repo.SaveSummary(&summary); err != nil {
		return nil, s.fail(ctx, scanID, scan.KindQuick, scan.MsgQuickError, fmt.Errorf("save summary: %w", err))
	}
	if err := s.stamp(func(info *domain.ScanInfo) { info.LastKind = scan.KindQuick }); err != nil {
		return nil, s.fail(ctx, scanID, scan.KindQuick, scan.MsgQuickError, err)
	}

	s.setMessage(scan.MsgQuickComplete)
	result := &ScanResult{
		ScanID:   scanID,
		Kind:     scan.KindQuick,
		Records:  records,
		Summary:  &summary,
		Progress: scan.Progress{Message: scan.MsgQuickComplete},
		Pages:    len(doc.Pages),
		Duration: s.now().Sub(started),
	}
	s.succeed(ctx, result, s.opts.QuickClearDelay)
	return result, nil
}

func (s *ScanService) deepScan(ctx context.Context, scope scan.Scope) (*ScanResult, error) {
	scanID, err := s.begin(scan.KindDeep)
	if err != nil {
		return nil, err
	}
	started := s.now()

	if err := s.resetDeepState(); err != nil {
		return nil, s.fail(ctx, scanID, scan.KindDeep, scan.MsgDeepError, err)
	}

	doc, err := s.docs.Document(ctx)
	if err != nil {
		return nil, s.fail(ctx, scanID, scan.KindDeep, scan.MsgDeepError, err)
	}

	var result *ScanResult
	if scope == scan.ScopeAllPages {
		result, err = s.deepScanAllPages(ctx, scanID, doc)
	} else {
		result, err = s.deepScanCurrentPage(ctx, scanID, doc)
	}
	if err != nil {
		return result, s.fail(ctx, scanID, scan.KindDeep, scan.MsgDeepError, err)
	}

	if err := s.stamp(func(info *domain.ScanInfo) {
		info.LastKind = scan.KindDeep
		info.LastScope = scope
		info.CurrentPageOnly = scope != scan.ScopeAllPages
	}); err != nil {
		return result, s.fail(ctx, scanID, scan.KindDeep, scan.MsgDeepError, err)
	}

	result.ScanID = scanID
	result.Kind = scan.KindDeep
	result.Scope = scope
	result.Duration = s.now().Sub(started)
	s.succeed(ctx, result, s.opts.DeepClearDelay)
	return result, nil
}

func (s *ScanService) deepScanCurrentPage(ctx context.Context, scanID string, doc *document.Document) (*ScanResult, error) {
	page := doc.CurrentPage()
	if page == nil {
		return nil, fmt.Errorf("document has no pages")
	}
	pageName := audit.PageName(page.Name)

	s.publish(ctx, &events.ScanStarted{
		BaseEvent: events.NewBaseEvent(events.EventTypeScanStarted, s.documentID(), scanID),
		Kind:      string(scan.KindDeep),
		Scope:     string(scan.ScopeCurrentPage),
		Pages:     1,
	})

	progress := scan.NewProgress([]string{pageName})
	progress.Message = scan.MsgDeepCurrentPage
	progress.Mark(0, scan.PageLoading, 0, nil)
	s.saveProgress(progress)

	records, err := s.processPage(ctx, page, currentPageName(doc))
	if err != nil {
		progress.Mark(0, scan.PageError, 0, err)
		s.saveProgress(progress)
		return &ScanResult{Progress: progress, Pages: 1}, err
	}
	progress.Mark(0, scan.PageComplete, len(records), nil)
	s.saveProgress(progress)

	cleaned := s.publishRecords(ctx, scanID, records)

	st := view.State{}
	st.ExpandAll([]string{pageName})
	if err := s.repo.SaveViewState(st); err != nil {
		s.logger.Warn("failed to save view state", "error", err)
	}

	progress.Message = scan.DeepPageCompleteMessage(len(records))
	s.saveProgress(progress)
	return &ScanResult{Records: cleaned, Progress: progress, Pages: 1}, nil
}

func (s *ScanService) deepScanAllPages(ctx context.Context, scanID string, doc *document.Document) (*ScanResult, error) {
	names := make([]string, len(doc.Pages))
	for i, p := range doc.Pages {
		names[i] = progressPageName(p, i)
	}
	progress := scan.NewProgress(names)
	progress.Message = scan.MsgDeepAllPages
	s.saveProgress(progress)

	docID := s.documentID()
	s.publish(ctx, &events.ScanStarted{
		BaseEvent: events.NewBaseEvent(events.EventTypeScanStarted, docID, scanID),
		Kind:      string(scan.KindDeep),
		Scope:     string(scan.ScopeAllPages),
		Pages:     len(doc.Pages),
	})

	currentPage := currentPageName(doc)
	var all []audit.Record
	cleaned := []audit.Record{}
	for i, page := range doc.Pages {
		if err := ctx.Err(); err != nil {
			markRemaining(&progress, i, err)
			s.saveProgress(progress)
			return &ScanResult{Records: cleaned, Progress: progress, Pages: len(doc.Pages)}, err
		}

		progress.Message = scan.DeepPageMessage(names[i], i, len(doc.Pages))
		progress.Mark(i, scan.PageLoading, 0, nil)
		s.saveProgress(progress)

		records, err := s.processPage(ctx, page, currentPage)
		if err != nil {
			s.logger.Error("page scan failed", "page", names[i], "error", err)
			progress.Mark(i, scan.PageError, 0, err)
			s.saveProgress(progress)
			s.publishPage(ctx, scanID, progress, i)
			continue
		}

		all = append(all, records...)
		progress.Mark(i, scan.PageComplete, len(records), nil)
		s.saveProgress(progress)
		s.publishPage(ctx, scanID, progress, i)
		cleaned = s.publishRecords(ctx, scanID, all)

		if i == len(doc.Pages)-1 {
			break
		}
		if err := s.sleep(ctx, s.opts.PageDelay); err != nil {
			markRemaining(&progress, i+1, err)
			s.saveProgress(progress)
			return &ScanResult{Records: cleaned, Progress: progress, Pages: len(doc.Pages)}, err
		}
	}

	progress.Message = scan.DeepCompleteMessage(len(all), len(doc.Pages))
	s.saveProgress(progress)
	return &ScanResult{Records: cleaned, Progress: progress, Pages: len(doc.Pages)}, nil
}

// processPage runs the deep page processor under the page timeout. A panic
// is turned into an error so that only this page fails.
func (s *ScanService) processPage(ctx context.Context, page *document.Page, currentPage string) ([]audit.Record, error) {
	run := func(context.Context) (records []audit.Record, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("page %q: %v", audit.PageName(page.Name), r)
			}
		}()
		return audit.ProcessPage(page, audit.Deep, currentPage, s.walker), nil
	}

	if s.opts.PageTimeout <= 0 {
		return run(ctx)
	}
	t := timeout.New[[]audit.Record](timeout.Config{DefaultTimeout: s.opts.PageTimeout})
	return t.Execute(ctx, s.opts.PageTimeout, run)
}

// publishRecords cleans and stores the cumulative record set. A failed store
// keeps the previously published set.
func (s *ScanService) publishRecords(ctx context.Context, scanID string, records []audit.Record) []audit.Record {
	cleaned := audit.CleanRecords(records)
	if err := s.repo.SaveRecords(cleaned); err != nil {
		s.logger.Error("failed to publish audit records", "error", err)
		return cleaned
	}
	s.publish(ctx, &events.RecordsPublished{
		BaseEvent:    events.NewBaseEvent(events.EventTypeRecordsPublished, s.documentID(), scanID),
		RecordCount:  len(cleaned),
		FindingCount: audit.CountFindings(cleaned),
	})
	return cleaned
}

func (s *ScanService) publishPage(ctx context.Context, scanID string, progress scan.Progress, i int) {
	p := progress.Pages[i]
	s.publish(ctx, &events.PageScanned{
		BaseEvent:      events.NewBaseEvent(events.EventTypePageScanned, s.documentID(), scanID),
		PageName:       p.PageName,
		Index:          i,
		Total:          len(progress.Pages),
		Status:         string(p.Status),
		ComponentCount: p.ComponentCount,
		Error:          p.Err,
	})
}

// resetDeepState clears the records, progress and view state a deep scan
// replaces.
func (s *ScanService) resetDeepState() error {
	if err := s.repo.SaveRecords([]audit.Record{}); err != nil {
		return fmt.Errorf("reset records: %w", err)
	}
	if err := s.repo.SaveProgress(scan.Progress{}); err != nil {
		return fmt.Errorf("reset progress: %w", err)
	}
	if err := s.repo.SaveViewState(view.State{}); err != nil {
		return fmt.Errorf("reset view state: %w", err)
	}
	return nil
}

func (s *ScanService) begin(kind scan.Kind) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.machine.Start(kind); err != nil {
		return "", err
	}
	s.gen++
	if s.clear != nil {
		s.clear.Stop()
		s.clear = nil
	}
	s.updateInfoState()
	s.logger.Debug("scan started", "kind", kind)
	return uuid.NewString(), nil
}

func (s *ScanService) succeed(ctx context.Context, result *ScanResult, clearAfter time.Duration) {
	s.mu.Lock()
	if err := s.machine.Succeed(); err != nil {
		s.logger.Warn("scan machine", "kind", s.machine.Kind(), "error", err)
	}
	s.updateInfoState()
	s.scheduleClearLocked(clearAfter)
	s.mu.Unlock()

	s.publish(ctx, &events.ScanCompleted{
		BaseEvent:  events.NewBaseEvent(events.EventTypeScanCompleted, s.documentID(), result.ScanID),
		Kind:       string(result.Kind),
		Scope:      string(result.Scope),
		Components: len(result.Records),
		Pages:      result.Pages,
		Duration:   result.Duration,
	})
}

func (s *ScanService) fail(ctx context.Context, scanID string, kind scan.Kind, message string, cause error) error {
	s.setMessage(message)

	s.mu.Lock()
	if err := s.machine.Fail(); err != nil {
		s.logger.Warn("scan machine", "kind", s.machine.Kind(), "error", err)
	}
	s.updateInfoState()
	if kind == scan.KindQuick {
		s.scheduleClearLocked(s.opts.QuickClearDelay)
	} else {
		s.scheduleClearLocked(s.opts.DeepClearDelay)
	}
	s.mu.Unlock()

	s.publish(ctx, &events.ScanFailed{
		BaseEvent: events.NewBaseEvent(events.EventTypeScanFailed, s.documentID(), scanID),
		Kind:      string(kind),
		Reason:    cause.Error(),
	})
	return fmt.Errorf("%s scan: %w", kind, cause)
}

func (s *ScanService) scheduleClearLocked(d time.Duration) {
	if d <= 0 {
		return
	}
	gen := s.gen
	s.clear = time.AfterFunc(d, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.gen != gen {
			return
		}
		if err := s.clearLocked(); err != nil {
			s.logger.Warn("failed to clear scan progress", "error", err)
		}
	})
}

func (s *ScanService) clearLocked() error {
	if s.machine.IsBusy() {
		return nil
	}
	if s.machine.Current() != scan.StateIdle {
		if err := s.machine.Settle(); err != nil {
			return err
		}
		s.updateInfoState()
	}
	return s.repo.SaveProgress(scan.Progress{})
}

func (s *ScanService) updateInfoState() {
	info, err := s.repo.LoadScanInfo()
	if err != nil {
		s.logger.Warn("failed to load scan info", "error", err)
		return
	}
	info.State = s.machine.Current()
	if err := s.repo.SaveScanInfo(info); err != nil {
		s.logger.Warn("failed to save scan info", "error", err)
	}
}

func (s *ScanService) stamp(update func(info *domain.ScanInfo)) error {
	info, err := s.repo.LoadScanInfo()
	if err != nil {
		return fmt.Errorf("load scan info: %w", err)
	}
	info.LastScanTime = s.now().UTC().Format(scan.TimestampFormat)
	update(&info)
	if err := s.repo.SaveScanInfo(info); err != nil {
		return fmt.Errorf("save scan info: %w", err)
	}
	return nil
}

// setMessage replaces the progress text and keeps the page list.
func (s *ScanService) setMessage(message string) {
	progress, err := s.repo.LoadProgress()
	if err != nil {
		s.logger.Warn("failed to load progress", "error", err)
	}
	progress.Message = message
	s.saveProgress(progress)
}

func (s *ScanService) saveProgress(p scan.Progress) {
	if err := s.repo.SaveProgress(p); err != nil {
		s.logger.Warn("failed to save progress", "error", err)
	}
}

func (s *ScanService) publish(ctx context.Context, event events.DomainEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Dispatch(ctx, event); err != nil {
		s.logger.Warn("event handler failed", "event", event.EventType(), "error", err)
	}
}

func (s *ScanService) documentID() string {
	return s.repo.Document().String()
}

// markRemaining fails every page from index from onwards.
func markRemaining(p *scan.Progress, from int, err error) {
	for j := from; j < len(p.Pages); j++ {
		p.Mark(j, scan.PageError, 0, err)
	}
}

func currentPageName(doc *document.Document) string {
	if p := doc.CurrentPage(); p != nil {
		return audit.PageName(p.Name)
	}
	return audit.CurrentPage
}

func progressPageName(p *document.Page, i int) string {
	if name := strings.TrimSpace(p.Name); name != "" {
		return name
	}
	return fmt.Sprintf("Page %d", i+1)
}

func scopeOf(currentPageOnly bool) scan.Scope {
	if currentPageOnly {
		return scan.ScopeCurrentPage
	}
	return scan.ScopeAllPages
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
