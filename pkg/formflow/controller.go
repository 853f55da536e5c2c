package formflow

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// Gateway is the backend collaborator the engine talks to. Implementations
// are the only place the engine does I/O.
type Gateway interface {
	FetchLocations(ctx context.Context, level Level, parentID string) ([]LocationNode, error)
	FetchMappings(ctx context.Context, surveyID string) ([]ExistingMapping, error)
	SubmitBulk(ctx context.Context, payload SubmissionPayload) error
}

// ExistingMapping is one persisted row as loaded from the backend.
type ExistingMapping struct {
	ID        string
	Selection map[Level]string
	Fields    map[string]string
}

// SessionContext carries the ambient session values the console used to read
// from global state. Injected at construction; never looked up implicitly.
type SessionContext struct {
	Tenant   string
	SiteID   string
	SiteName string
	Actor    string
}

// Command is a typed user action consumed by the Controller.
type Command interface{ isCommand() }

type AddRow struct{}

type RemoveRow struct{ RowID uint64 }

type SetLocation struct {
	RowID uint64
	Level Level
	Value string
}

type SetField struct {
	RowID      uint64
	Key, Value string
}

type SetShared struct{ Key, Value string }

type Load struct{ SurveyID string }

type Submit struct{}

func (AddRow) isCommand()      {}
func (RemoveRow) isCommand()   {}
func (SetLocation) isCommand() {}
func (SetField) isCommand()    {}
func (SetShared) isCommand()   {}
func (Load) isCommand()        {}
func (Submit) isCommand()      {}

// Controller is the single reducer owning a FormSnapshot. Apply handles one
// command synchronously; fetches it requests are executed by Dispatch (or by
// the caller directly) and fed back through Resolve, where the stale-response
// guard decides whether the result still applies. Resolve discarding a
// superseded response is the cancellation mechanism; in-flight fetches are
// never interrupted.
type Controller struct {
	mu       sync.Mutex
	session  SessionContext
	gateway  Gateway
	cache    *LocationCache
	snapshot *FormSnapshot
	gate     ValidationGate
	log      *logrus.Logger
}

type ControllerOptions struct {
	Session SessionContext
	Gateway Gateway
	Gate    ValidationGate
	Logger  *logrus.Logger
}

func NewController(opts ControllerOptions) *Controller {
	return &Controller{
		session:  opts.Session,
		gateway:  opts.Gateway,
		cache:    NewLocationCache(),
		snapshot: NewFormSnapshot(),
		gate:     opts.Gate,
		log:      opts.Logger,
	}
}

func (c *Controller) Cache() *LocationCache { return c.cache }

func (c *Controller) Snapshot() *FormSnapshot { return c.snapshot }

func (c *Controller) Session() SessionContext { return c.session }

// Apply executes one command. The returned fetch requests, if any, are already
// marked Pending in the cache; pass them to Dispatch or resolve them manually.
func (c *Controller) Apply(ctx context.Context, cmd Command) ([]FetchRequest, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch cmd := cmd.(type) {
	case AddRow:
		c.snapshot.Form.AddRow()
		return nil, nil

	case RemoveRow:
		if !c.snapshot.Form.RemoveRow(cmd.RowID) {
			return nil, fmt.Errorf("row %d not found", cmd.RowID)
		}
		return nil, nil

	case SetField:
		return nil, c.snapshot.Form.SetField(cmd.RowID, cmd.Key, cmd.Value)

	case SetShared:
		c.snapshot.Shared[cmd.Key] = cmd.Value
		return nil, nil

	case SetLocation:
		res, err := c.snapshot.Form.UpdateSelection(cmd.RowID, cmd.Level, cmd.Value)
		if err != nil {
			return nil, err
		}
		// Clears are applied before any fetch is issued, so a rapid edit
		// sequence never races a stale response into a cleared field.
		for _, req := range res.FetchRequests {
			c.cache.MarkPending(req.Level, req.ParentID)
		}
		return res.FetchRequests, nil

	case Load:
		return nil, c.load(ctx, cmd.SurveyID)

	case Submit:
		return nil, c.submit(ctx)

	default:
		return nil, fmt.Errorf("unknown command %T", cmd)
	}
}

// Dispatch executes fetch requests against the gateway, each on its own
// goroutine, and feeds results back through Resolve.
func (c *Controller) Dispatch(ctx context.Context, reqs []FetchRequest) {
	for _, req := range reqs {
		fetchesIssued.Inc()
		go func(req FetchRequest) {
			nodes, err := c.gateway.FetchLocations(ctx, req.Level, req.ParentID)
			c.Resolve(req, nodes, err)
		}(req)
	}
}

// Resolve applies one fetch result. Returns false when the result was
// discarded: the row is gone, or its parent selection no longer matches the
// parent the request was issued for.
func (c *Controller) Resolve(req FetchRequest, nodes []LocationNode, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stale(req) {
		staleDiscarded.Inc()
		if c.log != nil {
			c.log.WithFields(logrus.Fields{
				"row":    req.RowID,
				"level":  req.Level,
				"parent": req.ParentID,
			}).Debug("formflow: discarded stale fetch response")
		}
		return false
	}

	if err != nil {
		// Leave the entry Unloaded so the user can retry; sibling entries
		// keep whatever they had.
		c.cache.Invalidate(req.Level, req.ParentID)
		if c.log != nil {
			c.log.WithError(err).WithFields(logrus.Fields{
				"level":  req.Level,
				"parent": req.ParentID,
			}).Warn("formflow: location fetch failed")
		}
		return true
	}

	c.cache.Put(req.Level, req.ParentID, nodes)
	return true
}

// stale implements the stale-response guard: the response only applies while
// the row's current value at the request's parent level still equals the
// parent id the fetch was issued for.
func (c *Controller) stale(req FetchRequest) bool {
	row, ok := c.snapshot.Form.Row(req.RowID)
	if !ok || row.MarkedForDeletion {
		return true
	}
	parentLevel, ok := req.Level.Parent()
	if !ok {
		return false
	}
	return row.Value(parentLevel) != req.ParentID
}

func (c *Controller) load(ctx context.Context, surveyID string) error {
	existing, err := c.gateway.FetchMappings(ctx, surveyID)
	if err != nil {
		return &FetchError{Request: FetchRequest{}, Err: err}
	}
	c.snapshot.Shared[SharedSurveyID] = surveyID
	for _, m := range existing {
		c.snapshot.Form.LoadRow(m.ID, m.Selection, m.Fields)
	}
	return nil
}

func (c *Controller) submit(ctx context.Context) error {
	if result := c.gate.Validate(c.snapshot); !result.Ok() {
		submissions.WithLabelValues("validation_failed").Inc()
		return &ValidationError{Messages: result.Messages}
	}

	payload := Project(c.snapshot)
	if err := c.gateway.SubmitBulk(ctx, payload); err != nil {
		submissions.WithLabelValues("rejected").Inc()
		// Snapshot is preserved unchanged; the user can fix and retry.
		if sub, ok := err.(*SubmissionError); ok {
			return sub
		}
		return &SubmissionError{Err: err}
	}

	submissions.WithLabelValues("accepted").Inc()
	c.snapshot.Form.Compact()
	return nil
}
