// Package goalservice implements the goal use cases shared by the REST API
// and the MCP server.
package goalservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/metas/internal/apperr"
	"github.com/starford/metas/internal/goals"
	"github.com/starford/metas/internal/goalstore"
	"github.com/starford/metas/internal/metrics"
	"github.com/starford/metas/internal/models"
	"github.com/starford/metas/internal/suggest"
	"github.com/starford/metas/internal/view"
)

// Event kinds passed to a Notifier.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// Notifier receives goal change notifications.
type Notifier interface {
	PublishGoalEvent(kind string, id int64)
}

// GoalView is a goal decorated with its derived display state.
type GoalView struct {
	models.Goal
	Progress int                `json:"progresso"`
	Deadline goals.DeadlineInfo `json:"prazo"`
}

// Board is everything a list screen needs in one response.
type Board struct {
	View       view.Mode     `json:"view"`
	Category   string        `json:"category"`
	Goals      []GoalView    `json:"goals"`
	Categories []string      `json:"categories"`
	Summary    goals.Summary `json:"summary"`
}

// ListQuery selects the visible goals.
type ListQuery struct {
	View     string
	Category string
}

// Service coordinates validation, the derived-state rules, storage and
// notifications.
type Service struct {
	store  *goalstore.Store
	ai     suggest.Provider
	events Notifier
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithSuggester sets the AI provider. Without it suggestions are unavailable.
func WithSuggester(p suggest.Provider) Option {
	return func(s *Service) {
		if p != nil {
			s.ai = p
		}
	}
}

// WithNotifier sets the change notifier.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.events = n }
}

// WithClock sets the clock used for deadline labels.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a new goal service.
func NewService(store *goalstore.Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		ai:     suggest.Disabled{},
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Decorate attaches progress and deadline state to g.
func (s *Service) Decorate(g models.Goal) GoalView {
	return GoalView{
		Goal:     g,
		Progress: goals.ProgressPercent(g),
		Deadline: goals.Deadline(g, models.DateOf(s.now())),
	}
}

// List returns the goals visible under q, newest first. Categories and the
// summary always describe the whole collection.
func (s *Service) List(_ context.Context, q ListQuery) (*Board, error) {
	mode, err := view.ParseMode(q.View)
	if err != nil {
		return nil, err
	}
	category := strings.TrimSpace(q.Category)
	if category == "" {
		category = view.AllCategories
	}

	all := view.SortByRecency(s.store.GetAll())
	visible := view.FilterByView(all, mode, category)
	out := make([]GoalView, len(visible))
	for i, g := range visible {
		out[i] = s.Decorate(g)
	}
	return &Board{
		View:       mode,
		Category:   category,
		Goals:      out,
		Categories: view.ListCategories(all),
		Summary:    goals.Summarize(all),
	}, nil
}

// Categories returns "All" followed by every distinct category in use.
func (s *Service) Categories(_ context.Context) []string {
	return view.ListCategories(view.SortByRecency(s.store.GetAll()))
}

// Get returns the goal with id.
func (s *Service) Get(_ context.Context, id int64) (models.Goal, error) {
	g, ok := s.store.GetByID(id)
	if !ok {
		return models.Goal{}, fmt.Errorf("goal %d: %w", id, apperr.ErrNotFound)
	}
	return g, nil
}

// Create validates f and stores it as a new goal.
func (s *Service) Create(_ context.Context, f models.Fields) (models.Goal, error) {
	f, err := s.prepare(f)
	if err != nil {
		s.record("create", err)
		return models.Goal{}, err
	}
	g, err := s.store.Create(f)
	s.record("create", err)
	if err != nil {
		return models.Goal{}, err
	}
	s.notify(EventCreated, g.ID)
	return g, nil
}

// Update replaces the editable fields of the goal with id.
// A blank status keeps the stored one.
func (s *Service) Update(ctx context.Context, id int64, f models.Fields) (models.Goal, error) {
	keepStatus := strings.TrimSpace(string(f.Status)) == ""
	f, err := s.prepare(f)
	if err != nil {
		s.record("update", err)
		return models.Goal{}, err
	}
	return s.mutate(ctx, "update", id, func(g *models.Goal) error {
		status := g.Status
		g.Apply(f)
		if keepStatus {
			g.Status = goals.DeriveStatus(g.Checklist, status)
		}
		return nil
	})
}

// AddItem appends an unchecked step to the goal's checklist.
func (s *Service) AddItem(ctx context.Context, id int64, text string) (models.Goal, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		err := apperr.Invalid("step text is required")
		s.record("add_item", err)
		return models.Goal{}, err
	}
	return s.mutate(ctx, "add_item", id, func(g *models.Goal) error {
		goals.AddItem(g, s.store.IDs().Next(), text)
		return nil
	})
}

// ToggleItem flips the done flag of a checklist step.
func (s *Service) ToggleItem(ctx context.Context, id, itemID int64) (models.Goal, error) {
	return s.mutate(ctx, "toggle_item", id, func(g *models.Goal) error {
		if !goals.ToggleItem(g, itemID) {
			return fmt.Errorf("step %d: %w", itemID, apperr.ErrNotFound)
		}
		return nil
	})
}

// RemoveItem deletes a checklist step.
func (s *Service) RemoveItem(ctx context.Context, id, itemID int64) (models.Goal, error) {
	return s.mutate(ctx, "remove_item", id, func(g *models.Goal) error {
		if !goals.RemoveItem(g, itemID) {
			return fmt.Errorf("step %d: %w", itemID, apperr.ErrNotFound)
		}
		return nil
	})
}

// Delete removes the goal with id. Deleting a missing goal succeeds.
func (s *Service) Delete(_ context.Context, id int64) error {
	_, existed := s.store.GetByID(id)
	err := s.store.DeleteByID(id)
	s.record("delete", err)
	if err != nil {
		return err
	}
	if existed {
		s.notify(EventDeleted, id)
	}
	return nil
}

// Suggest asks the AI provider for steps toward a goal with the given
// title and description. Provider failures are returned as
// apperr.ErrUpstream, or apperr.ErrUnavailable when no provider is set.
func (s *Service) Suggest(ctx context.Context, title, description string) ([]string, error) {
	if strings.TrimSpace(title) == "" {
		return nil, apperr.Invalid("a title is required before asking for suggestions")
	}

	start := time.Now()
	steps, err := s.ai.Suggest(ctx, title, description)
	elapsed := time.Since(start).Seconds()
	switch {
	case errors.Is(err, apperr.ErrUnavailable):
		metrics.RecordSuggestion("disabled", elapsed)
		return nil, err
	case err != nil:
		metrics.RecordSuggestion("error", elapsed)
		s.logger.Warn("step suggestion failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("could not get suggestions: %v: %w", err, apperr.ErrUpstream)
	}
	metrics.RecordSuggestion("ok", elapsed)
	return steps, nil
}

// ApplySuggestions appends suggested steps to the stored goal. On any
// failure the checklist is left as it was.
func (s *Service) ApplySuggestions(ctx context.Context, id int64) (models.Goal, error) {
	g, err := s.Get(ctx, id)
	if err != nil {
		s.record("apply_suggestions", err)
		return models.Goal{}, err
	}
	steps, err := s.Suggest(ctx, g.Title, g.Description)
	if err != nil {
		s.record("apply_suggestions", err)
		return models.Goal{}, err
	}
	return s.mutate(ctx, "apply_suggestions", id, func(g *models.Goal) error {
		goals.AppendSteps(g, s.store.IDs().Next, steps)
		return nil
	})
}

// mutate applies fn to the stored goal, recomputes its status and persists
// it in one locked cycle.
func (s *Service) mutate(_ context.Context, op string, id int64, fn func(*models.Goal) error) (models.Goal, error) {
	g, err := s.store.Modify(id, func(g *models.Goal) error {
		if err := fn(g); err != nil {
			return err
		}
		goals.Recompute(g)
		return nil
	})
	if err != nil {
		s.record(op, err)
		return models.Goal{}, err
	}
	s.record(op, nil)
	s.notify(EventUpdated, g.ID)
	return g, nil
}

// prepare normalizes and validates caller input.
func (s *Service) prepare(f models.Fields) (models.Fields, error) {
	f.Title = strings.TrimSpace(f.Title)
	f.Category = strings.TrimSpace(f.Category)
	if f.Category == "" {
		f.Category = models.DefaultCategory
	}
	if f.Status == "" {
		f.Status = models.StatusPending
	}
	if f.DueDate != nil && f.DueDate.IsZero() {
		f.DueDate = nil
	}

	if err := validateFields(f); err != nil {
		return models.Fields{}, err
	}

	items := make([]models.ChecklistItem, len(f.Checklist))
	seen := make(map[int64]bool, len(f.Checklist))
	for i, it := range f.Checklist {
		it.Text = strings.TrimSpace(it.Text)
		if it.ID == 0 || seen[it.ID] {
			it.ID = s.store.IDs().Next()
		}
		seen[it.ID] = true
		items[i] = it
	}
	f.Checklist = items
	f.Status = goals.DeriveStatus(f.Checklist, f.Status)
	return f, nil
}

func validateFields(f models.Fields) error {
	statuses := make([]any, len(models.Statuses))
	for i, st := range models.Statuses {
		statuses[i] = st
	}
	err := validation.ValidateStruct(&f,
		validation.Field(&f.Title, validation.Required.Error("title is required")),
		validation.Field(&f.Status, validation.In(statuses...).Error("unknown status")),
		validation.Field(&f.Checklist, validation.Each(validation.By(nonBlankStep))),
	)
	if err == nil {
		return nil
	}
	return apperr.Invalid(validationMessage(err))
}

func nonBlankStep(value any) error {
	it, _ := value.(models.ChecklistItem)
	if strings.TrimSpace(it.Text) == "" {
		return errors.New("step text is required")
	}
	return nil
}

// validationMessage flattens ozzo field errors into one line with a
// stable field order.
func validationMessage(err error) string {
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return err.Error()
	}
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fieldMessage(errs[k]))
	}
	return strings.Join(parts, "; ")
}

func fieldMessage(err error) string {
	var nested validation.Errors
	if errors.As(err, &nested) {
		return validationMessage(nested)
	}
	return err.Error()
}

func (s *Service) record(op string, err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, apperr.ErrValidation):
		result = "invalid"
	case errors.Is(err, apperr.ErrNotFound):
		result = "not_found"
	default:
		result = "error"
	}
	metrics.RecordGoalOperation(op, result)
}

func (s *Service) notify(kind string, id int64) {
	if s.events != nil {
		s.events.PublishGoalEvent(kind, id)
	}
}
