package complaint

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Store is the persistence contract the engine drives. *Repository satisfies
// it; tests use an in-memory fake.
type Store interface {
	Insert(ctx context.Context, cat Category, c Complaint) (Complaint, error)
	ByOwner(ctx context.Context, cat Category, scholarNumber string) ([]Complaint, error)
	ByOwnerFiltered(ctx context.Context, cat Category, scholarNumber string, f Filter) ([]Complaint, error)
	ByID(ctx context.Context, cat Category, id string) (Complaint, error)
	Update(ctx context.Context, cat Category, id string, upd RecordUpdate) (Complaint, error)
	Delete(ctx context.Context, cat Category, id string) error
	CountByOwner(ctx context.Context, cat Category, scholarNumber string) (total, resolved int, err error)
}

// Dispatcher receives a fire-and-forget notification after a successful
// submission. Implementations must not block on remote delivery; a dispatch
// failure never reaches the submitting caller.
type Dispatcher interface {
	ComplaintRegistered(c Complaint)
}

// Service is the complaint lifecycle engine: validation, ownership binding,
// authorization, and status transitions.
type Service struct {
	store      Store
	dispatcher Dispatcher
	validate   *validator.Validate
	log        *zap.Logger
}

// NewService creates the engine. dispatcher may be nil (notifications off).
func NewService(store Store, dispatcher Dispatcher, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:      store,
		dispatcher: dispatcher,
		validate:   validator.New(),
		log:        log,
	}
}

// Submit validates a payload against its category descriptor, binds ownership
// to the verified identity, persists the complaint, and enqueues a
// confirmation notification. The enqueue is best-effort: by the time it runs
// the write has committed and success is final.
func (s *Service) Submit(ctx context.Context, cat Category, sub Submission, actor Actor) (Complaint, error) {
	d, ok := DescriptorFor(cat)
	if !ok {
		return Complaint{}, ErrUnknownCategory
	}

	// Ownership binding: the caller-declared scholar number must match the
	// verified identity. The stored owner is always the verified subject.
	if sub.ScholarNumber != actor.Subject {
		return Complaint{}, validationf("scholarNumber", "Invalid scholar number")
	}
	if err := s.validate.Var(actor.Email, "required,email"); err != nil {
		return Complaint{}, validationf("useremail", "Invalid email")
	}
	if sub.StudentName == "" {
		return Complaint{}, validationf("studentName", "Student name is required!")
	}
	if sub.Description == "" {
		return Complaint{}, validationf("complainDescription", "Complaint description is required!")
	}
	if d.RequiresType() {
		if sub.ComplainType == "" {
			return Complaint{}, validationf("complainType", "Complaint type is required!")
		}
		if !d.TypeAllowed(sub.ComplainType) {
			return Complaint{}, validationf("complainType", "%q is not a valid %s complaint type", sub.ComplainType, cat)
		}
	}
	for _, field := range d.RequiredExtras {
		if extraValue(sub, field) == "" {
			return Complaint{}, validationf(field, "Please enter all details!")
		}
	}

	created, err := s.store.Insert(ctx, cat, Complaint{
		ScholarNumber: actor.Subject,
		StudentName:   sub.StudentName,
		UserEmail:     actor.Email,
		ComplainType:  sub.ComplainType,
		Description:   sub.Description,
		Attachments:   sub.Attachments,
		HostelNumber:  sub.HostelNumber,
		Room:          sub.Room,
		Department:    sub.Department,
		Stream:        sub.Stream,
		Year:          sub.Year,
		Landmark:      sub.Landmark,
	})
	if err != nil {
		return Complaint{}, fmt.Errorf("persist complaint: %w", err)
	}
	submittedTotal.WithLabelValues(string(cat)).Inc()

	if s.dispatcher != nil {
		s.dispatcher.ComplaintRegistered(created)
	}
	return created, nil
}

// List returns the actor's own complaints in a category. Staff may list on
// behalf of any owner by passing the owner explicitly through ListFor.
func (s *Service) List(ctx context.Context, cat Category, actor Actor) ([]Complaint, error) {
	return s.store.ByOwner(ctx, cat, actor.Subject)
}

// ListFor is the privileged variant of List.
func (s *Service) ListFor(ctx context.Context, cat Category, owner string, actor Actor) ([]Complaint, error) {
	if owner != actor.Subject && !actor.Staff {
		return nil, ErrForbidden
	}
	return s.store.ByOwner(ctx, cat, owner)
}

// ListFiltered narrows List by any combination of createdAt range, id set,
// complaint type, status, and read status, always scoped to the actor's own
// records. Zero matches return ErrNotFound, a deliberate asymmetry with List
// kept for client compatibility.
func (s *Service) ListFiltered(ctx context.Context, cat Category, actor Actor, f Filter) ([]Complaint, error) {
	if f.Status != nil && *f.Status != StatusPending && *f.Status != StatusResolved {
		return nil, validationf("status", "%q is not a valid status", *f.Status)
	}
	if f.ReadStatus != nil && *f.ReadStatus != ReadNotViewed && *f.ReadStatus != ReadViewed {
		return nil, validationf("readStatus", "%q is not a valid read status", *f.ReadStatus)
	}
	found, err := s.store.ByOwnerFiltered(ctx, cat, actor.Subject, f)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, ErrNotFound
	}
	return found, nil
}

// Get is the point lookup used by detail views. Owners see their own
// complaints; staff see any, and a staff read flips the read status to
// Viewed.
func (s *Service) Get(ctx context.Context, cat Category, id string, actor Actor) (Complaint, error) {
	c, err := s.store.ByID(ctx, cat, id)
	if err != nil {
		return Complaint{}, err
	}
	if c.ScholarNumber != actor.Subject && !actor.Staff {
		return Complaint{}, ErrForbidden
	}
	if actor.Staff && c.ReadStatus == ReadNotViewed {
		viewed := ReadViewed
		updated, err := s.store.Update(ctx, cat, id, RecordUpdate{ReadStatus: &viewed})
		if err != nil {
			// The read itself succeeded; losing the view marker is tolerable.
			s.log.Warn("mark viewed failed", zap.String("id", id), zap.Error(err))
			return c, nil
		}
		return updated, nil
	}
	return c, nil
}

// Update applies a staff-side partial merge. Status moves forward only:
// Pending→Resolved sets resolvedAt exactly once, and Resolved→Pending is
// rejected. resolvedAt is never caller-writable.
func (s *Service) Update(ctx context.Context, cat Category, id string, req UpdateRequest, actor Actor) (Complaint, error) {
	if !actor.Staff {
		return Complaint{}, ErrForbidden
	}
	current, err := s.store.ByID(ctx, cat, id)
	if err != nil {
		return Complaint{}, err
	}

	upd := RecordUpdate{
		AdminRemarks:     req.AdminRemarks,
		AdminAttachments: req.AdminAttachments,
	}
	if req.Status != nil {
		switch *req.Status {
		case StatusPending:
			if current.Status == StatusResolved {
				return Complaint{}, validationf("status", "a resolved complaint cannot be reopened")
			}
		case StatusResolved:
			upd.Status = req.Status
			if current.ResolvedAt == nil {
				now := time.Now().UTC()
				upd.ResolvedAt = &now
			}
		default:
			return Complaint{}, validationf("status", "%q is not a valid status", *req.Status)
		}
	}
	if req.ReadStatus != nil {
		if *req.ReadStatus != ReadNotViewed && *req.ReadStatus != ReadViewed {
			return Complaint{}, validationf("readStatus", "%q is not a valid read status", *req.ReadStatus)
		}
		upd.ReadStatus = req.ReadStatus
	}

	updated, err := s.store.Update(ctx, cat, id, upd)
	if err != nil {
		return Complaint{}, err
	}
	if upd.ResolvedAt != nil {
		resolvedTotal.WithLabelValues(string(cat)).Inc()
	}
	return updated, nil
}

// Delete permanently removes a complaint. Staff only.
func (s *Service) Delete(ctx context.Context, cat Category, id string, actor Actor) error {
	if !actor.Staff {
		return ErrForbidden
	}
	return s.store.Delete(ctx, cat, id)
}

// Counts returns per-category and aggregate complaint counts for an owner.
type Counts struct {
	Registered  int              `json:"registered"`
	Resolved    int              `json:"resolved"`
	Unresolved  int              `json:"unresolved"`
	PerCategory map[Category]int `json:"perCategory"`
}

// CountsFor fans out one count query per category and reduces.
func (s *Service) CountsFor(ctx context.Context, scholarNumber string) (Counts, error) {
	counts := Counts{PerCategory: make(map[Category]int, len(Categories()))}
	for _, cat := range Categories() {
		total, resolved, err := s.store.CountByOwner(ctx, cat, scholarNumber)
		if err != nil {
			return Counts{}, fmt.Errorf("count %s: %w", cat, err)
		}
		counts.PerCategory[cat] = total
		counts.Registered += total
		counts.Resolved += resolved
	}
	counts.Unresolved = counts.Registered - counts.Resolved
	return counts, nil
}
