package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/escuriola/edaitorial/internal/checker"
	"github.com/escuriola/edaitorial/internal/enumerator"
	"github.com/escuriola/edaitorial/internal/gate"
	"github.com/escuriola/edaitorial/internal/logging"
	"github.com/escuriola/edaitorial/internal/model"
	"github.com/escuriola/edaitorial/internal/tracker"
	"github.com/escuriola/edaitorial/internal/utils"
)

type JobEventType string

const (
	JobEventStatus   JobEventType = "status"
	JobEventProgress JobEventType = "progress"
	JobEventResult   JobEventType = "result"
)

type JobEvent struct {
	JobID string       `json:"job_id"`
	Type  JobEventType `json:"type"`

	// For status changes
	Status JobStatus `json:"status,omitempty"`
	Error  string    `json:"error,omitempty"`

	// For progress
	Processed int                   `json:"processed,omitempty"`
	Total     int                   `json:"total,omitempty"`
	NodeID    string                `json:"node_id,omitempty"`
	Result    *model.AnalysisResult `json:"result,omitempty"`
}

type JobStatus string

const (
	JobPending  JobStatus = "pending"
	JobRunning  JobStatus = "running"
	JobDone     JobStatus = "done"
	JobCanceled JobStatus = "canceled"
)

// Job is a batch of analyses run in the background.
type Job struct {
	ID        string                  `json:"id"`
	Status    JobStatus               `json:"status"`
	Error     string                  `json:"error,omitempty"`
	Total     int                     `json:"total"`
	Processed int                     `json:"processed"`
	Results   []*model.AnalysisResult `json:"results,omitempty"`
	StartedAt time.Time               `json:"started_at"`
	EndedAt   time.Time               `json:"ended_at"`
	Events    chan JobEvent           `json:"-"`
}

var (
	// ErrJobNotFound is returned for unknown job ids.
	ErrJobNotFound = errors.New("job not found")

	ErrInvalidCrawlRoot = errors.New("crawl root must be an absolute http(s) url")
)

// Orchestrator ties the configured services together behind the operations
// the CLI and the HTTP API expose.
type Orchestrator struct {
	cfg    *Config
	comps  *Components
	logger logging.Logger

	jobsMu     sync.Mutex
	jobs       map[string]*Job
	jobCancels map[string]context.CancelFunc
	jobsWG     sync.WaitGroup
}

// NewOrchestrator builds the components for cfg.
func NewOrchestrator(cfg *Config, logger logging.Logger, opts ...ComponentOption) (*Orchestrator, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		return nil, errors.New("orchestrator: nil logger")
	}
	comps, err := NewComponents(cfg, logger, opts...)
	if err != nil {
		return nil, err
	}
	return &Orchestrator{
		cfg:        cfg,
		comps:      comps,
		logger:     logger.With(logging.Field{Key: "component", Value: "orchestrator"}),
		jobs:       make(map[string]*Job),
		jobCancels: make(map[string]context.CancelFunc),
	}, nil
}

func (o *Orchestrator) Config() *Config { return o.cfg }

// Components exposes the wired services.
func (o *Orchestrator) Components() *Components { return o.comps }

// AnalyzeNode analyzes c. Content with a node id is also registered and its
// result added to the node's history unless the latest entry already holds
// the same content. Failures there are logged only; the analysis result is
// always returned.
func (o *Orchestrator) AnalyzeNode(ctx context.Context, c model.Content) *model.AnalysisResult {
	res := o.comps.Analyzer.Analyze(ctx, c)
	o.record(ctx, c, res)
	return res
}

// CheckPublish analyzes c and applies the publish threshold.
func (o *Orchestrator) CheckPublish(ctx context.Context, c model.Content) *gate.Decision {
	return o.comps.Gate.Decide(o.AnalyzeNode(ctx, c))
}

func (o *Orchestrator) record(ctx context.Context, c model.Content, res *model.AnalysisResult) {
	if c.NodeID == "" || res.Source == model.SourceFailsafe {
		return
	}
	if c.Title != "" {
		if _, err := o.comps.Registry.UpsertNode(ctx, model.Node{
			ID:          c.NodeID,
			Title:       c.Title,
			URL:         c.URL,
			ContentType: c.ContentType,
		}); err != nil {
			o.logger.Warn("failed to register node",
				logging.Field{Key: "node_id", Value: c.NodeID},
				logging.Field{Key: "error", Value: err})
		}
	}
	if latest, err := o.comps.Tracker.List(ctx, c.NodeID, 1); err == nil && len(latest) == 1 &&
		latest[0].Fingerprint == res.Fingerprint {
		o.logger.Debug("content unchanged since last analysis, history left as is",
			logging.Field{Key: "node_id", Value: c.NodeID})
		return
	}
	if _, err := o.comps.Tracker.Record(ctx, c.NodeID, c, res); err != nil {
		o.logger.Warn("failed to record analysis",
			logging.Field{Key: "node_id", Value: c.NodeID},
			logging.Field{Key: "error", Value: err})
	}
}

func (o *Orchestrator) AddNode(ctx context.Context, n model.Node) (*model.Node, error) {
	return o.comps.Registry.UpsertNode(ctx, n)
}

func (o *Orchestrator) GetNode(ctx context.Context, id string) (*model.Node, error) {
	return o.comps.Registry.GetNode(ctx, id)
}

func (o *Orchestrator) ListNodes(ctx context.Context, limit int) ([]model.Node, error) {
	return o.comps.Registry.ListRecent(ctx, limit)
}

func (o *Orchestrator) DeleteNode(ctx context.Context, id string) error {
	return o.comps.Registry.DeleteNode(ctx, id)
}

func (o *Orchestrator) History(ctx context.Context, nodeID string, limit int) ([]*tracker.Entry, error) {
	return o.comps.Tracker.List(ctx, nodeID, limit)
}

// Compare diffs the two most recent analyses of nodeID.
func (o *Orchestrator) Compare(ctx context.Context, nodeID string) (*tracker.Comparison, error) {
	return o.comps.Tracker.Compare(ctx, nodeID)
}

func (o *Orchestrator) CompareEntries(ctx context.Context, baseID, headID string) (*tracker.Comparison, error) {
	return o.comps.Tracker.CompareEntries(ctx, baseID, headID)
}

// FetchContent downloads the pages at urls and returns their content in
// order. Pages that could not be fetched are left out and reported in the
// joined error.
func (o *Orchestrator) FetchContent(ctx context.Context, urls []string) ([]model.Content, error) {
	pages := o.comps.Fetcher.Fetch(ctx, urls)
	out := make([]model.Content, 0, len(pages))
	var errs []error
	for _, p := range pages {
		if p.Err != nil {
			errs = append(errs, p.Err)
			continue
		}
		c := p.Content
		if id, ok := checker.NodeIDFromURL(p.URL); ok {
			c.NodeID = id
		}
		out = append(out, c)
	}
	return out, errors.Join(errs...)
}

// CrawlNodes crawls the site at root up to depth links deep (a negative
// depth uses the configured limit) and registers every page found as a
// node. Pages under /node/<id> keep that id; other pages use their path.
func (o *Orchestrator) CrawlNodes(ctx context.Context, root string, depth int) ([]model.Node, error) {
	if !utils.IsHTTP(root) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCrawlRoot, root)
	}
	spider := o.comps.Spider
	if depth >= 0 {
		spider = enumerator.NewSpider(depth, o.cfg.Crawl.MaxPages, o.comps.Fetcher, o.logger)
	}
	pages, err := spider.Enumerate(ctx, root)
	if err != nil && len(pages) == 0 {
		return nil, err
	}

	nodes := make([]model.Node, 0, len(pages))
	for _, p := range pages {
		title := p.Content.Title
		if strings.TrimSpace(title) == "" {
			title = p.URL
		}
		n, nerr := o.comps.Registry.UpsertNode(ctx, model.Node{
			ID:    crawledNodeID(p.URL),
			Title: title,
			URL:   p.URL,
		})
		if nerr != nil {
			o.logger.Warn("skipping crawled page",
				logging.Field{Key: "url", Value: p.URL},
				logging.Field{Key: "error", Value: nerr})
			continue
		}
		nodes = append(nodes, *n)
	}
	o.logger.Info("crawl finished",
		logging.Field{Key: "root", Value: root},
		logging.Field{Key: "pages", Value: len(pages)},
		logging.Field{Key: "nodes", Value: len(nodes)})
	return nodes, err
}

func crawledNodeID(u string) string {
	if id, ok := checker.NodeIDFromURL(u); ok {
		return id
	}
	if p := utils.PathOf(u); p != "" {
		return p
	}
	return "/"
}

// PurgeCache drops expired cache entries.
func (o *Orchestrator) PurgeCache(ctx context.Context) (int, error) {
	return o.comps.Cache.Purge(ctx)
}

// ─── Jobs ──────────────────────────────────────────────────────────────

func (o *Orchestrator) emitJobEvent(jobID string, ev JobEvent) {
	o.jobsMu.Lock()
	job, ok := o.jobs[jobID]
	o.jobsMu.Unlock()
	if !ok || job == nil || job.Events == nil {
		return
	}

	// Non-blocking send; drop if buffer is full.
	select {
	case job.Events <- ev:
	default:
	}
}

func (o *Orchestrator) updateJob(jobID string, fn func(j *Job)) {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	if j, ok := o.jobs[jobID]; ok {
		fn(j)
	}
}

// StartAnalyzeJob analyzes contents one after another in the background.
// The job outlives ctx's cancellation; use CancelJob to stop it.
func (o *Orchestrator) StartAnalyzeJob(ctx context.Context, contents []model.Content) (*Job, error) {
	if len(contents) == 0 {
		return nil, fmt.Errorf("analyze job: no content")
	}

	jobID := uuid.New().String()
	job := &Job{
		ID:        jobID,
		Status:    JobPending,
		Total:     len(contents),
		StartedAt: time.Now().UTC(),
		Events:    make(chan JobEvent, len(contents)+4),
	}

	jobCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	o.jobsMu.Lock()
	o.jobs[jobID] = job
	o.jobCancels[jobID] = cancel
	o.jobsMu.Unlock()

	o.emitJobEvent(jobID, JobEvent{JobID: jobID, Type: JobEventStatus, Status: JobPending})

	o.jobsWG.Add(1)
	go func() {
		defer o.jobsWG.Done()
		defer func() {
			o.jobsMu.Lock()
			delete(o.jobCancels, jobID)
			job.EndedAt = time.Now().UTC()
			o.jobsMu.Unlock()
			cancel()

			// Close events channel so websocket loop can terminate cleanly
			close(job.Events)
		}()

		o.updateJob(jobID, func(j *Job) { j.Status = JobRunning })
		o.emitJobEvent(jobID, JobEvent{JobID: jobID, Type: JobEventStatus, Status: JobRunning})

		for i, c := range contents {
			if jobCtx.Err() != nil {
				o.updateJob(jobID, func(j *Job) {
					j.Status = JobCanceled
					j.Error = jobCtx.Err().Error()
				})
				o.emitJobEvent(jobID, JobEvent{
					JobID:  jobID,
					Type:   JobEventStatus,
					Status: JobCanceled,
					Error:  jobCtx.Err().Error(),
				})
				return
			}

			res := o.AnalyzeNode(jobCtx, c)
			o.updateJob(jobID, func(j *Job) {
				j.Processed = i + 1
				j.Results = append(j.Results, res)
			})
			o.emitJobEvent(jobID, JobEvent{
				JobID:     jobID,
				Type:      JobEventProgress,
				Processed: i + 1,
				Total:     len(contents),
				NodeID:    c.NodeID,
				Result:    res,
			})
		}

		o.updateJob(jobID, func(j *Job) { j.Status = JobDone })
		o.emitJobEvent(jobID, JobEvent{JobID: jobID, Type: JobEventResult, Status: JobDone, Processed: len(contents), Total: len(contents)})
	}()

	return job, nil
}

func (o *Orchestrator) CancelJob(jobID string) {
	o.jobsMu.Lock()
	cancel := o.jobCancels[jobID]
	o.jobsMu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// GetJob returns a snapshot of the job's state.
func (o *Orchestrator) GetJob(jobID string) (*Job, error) {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	j, ok := o.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	snap := *j
	snap.Results = append([]*model.AnalysisResult(nil), j.Results...)
	return &snap, nil
}

// ListJobs returns snapshots of every job started by this orchestrator,
// oldest first.
func (o *Orchestrator) ListJobs() []*Job {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	out := make([]*Job, 0, len(o.jobs))
	for _, j := range o.jobs {
		snap := *j
		snap.Results = append([]*model.AnalysisResult(nil), j.Results...)
		out = append(out, &snap)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].StartedAt.Before(out[b].StartedAt) })
	return out
}

// Close cancels running jobs, waits for them and releases the components.
func (o *Orchestrator) Close() error {
	o.jobsMu.Lock()
	for _, cancel := range o.jobCancels {
		cancel()
	}
	o.jobsMu.Unlock()
	o.jobsWG.Wait()
	return o.comps.Close()
}
