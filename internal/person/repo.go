package person

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

type PersonDTO struct {
	Email       string
	Username    string
	Password    string
	FirstName   string
	LastName    string
	PhoneNumber string
	Profile     *OwnerProfile
}

type PersonRepo interface {
	Create(ctx context.Context, dto *PersonDTO) (*Person, error)
	FindByID(ctx context.Context, id int64) (*Person, error)
	FindByEmail(ctx context.Context, email string) (*Person, error)
	SetAccountStatus(ctx context.Context, id int64, status AccountStatus) error
}

// personRepo keeps persons in memory. Email and username are unique, email
// case-insensitively.
type personRepo struct {
	mu      sync.RWMutex
	nextID  int64
	byID    map[int64]*Person
	byEmail map[string]int64
	byName  map[string]int64
	logger  *zap.Logger
}

func NewPersonRepo(logger *zap.Logger) PersonRepo {
	return &personRepo{
		byID:    make(map[int64]*Person),
		byEmail: make(map[string]int64),
		byName:  make(map[string]int64),
		logger:  logger,
	}
}

func (p *personRepo) Create(ctx context.Context, dto *PersonDTO) (*Person, error) {
	if err := ctx.Err(); err != nil {
		p.logger.Warn("create person canceled/timed out", zap.Error(err))
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(dto.Email))
	username := strings.TrimSpace(dto.Username)

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.byEmail[email]; ok {
		p.logger.Debug("duplicate email", zap.String("email", email))
		return nil, ErrDuplicateEmail
	}
	if _, ok := p.byName[username]; ok {
		p.logger.Debug("duplicate username", zap.String("username", username))
		return nil, ErrDuplicateUsername
	}

	p.nextID++
	person := &Person{
		ID:          p.nextID,
		Email:       email,
		Username:    username,
		Password:    dto.Password,
		FirstName:   dto.FirstName,
		LastName:    dto.LastName,
		PhoneNumber: dto.PhoneNumber,
		CreatedAt:   time.Now().UTC(),
	}
	if dto.Profile != nil {
		profile := *dto.Profile
		if profile.AccountStatus == "" {
			profile.AccountStatus = AccountPending
		}
		person.Profile = &profile
	}

	p.byID[person.ID] = person
	p.byEmail[email] = person.ID
	p.byName[username] = person.ID

	p.logger.Debug("person created",
		zap.Int64("id", person.ID),
		zap.String("role", string(person.Role())),
	)
	return clone(person), nil
}

func (p *personRepo) FindByID(ctx context.Context, id int64) (*Person, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	person, ok := p.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(person), nil
}

func (p *personRepo) FindByEmail(ctx context.Context, email string) (*Person, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	id, ok := p.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(p.byID[id]), nil
}

func (p *personRepo) SetAccountStatus(ctx context.Context, id int64, status AccountStatus) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	person, ok := p.byID[id]
	if !ok {
		return ErrNotFound
	}
	if person.Profile == nil {
		// renters have no profile to update
		p.logger.Debug("account status ignored for renter", zap.Int64("id", id))
		return nil
	}
	person.Profile.AccountStatus = status
	return nil
}

func clone(p *Person) *Person {
	c := *p
	if p.Profile != nil {
		profile := *p.Profile
		c.Profile = &profile
	}
	return &c
}
