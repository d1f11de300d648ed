package seed

import (
	"context"
	"fmt"
	"os"
	"strings"

	"travelapproval/internal/logger"
	"travelapproval/internal/model"
	"travelapproval/internal/repository"
	"travelapproval/internal/service"

	"gopkg.in/yaml.v3"
)

type Fixture struct {
	Users     []UserFixture     `yaml:"users"`
	TAccounts []TAccountFixture `yaml:"taccounts"`
	Projects  []ProjectFixture  `yaml:"projects"`
}

type UserFixture struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	FullName string `yaml:"full_name"`
	Role     string `yaml:"role"`
	// Manager is the email of a user listed earlier in the fixture.
	Manager string `yaml:"manager"`
}

type TAccountFixture struct {
	Code        string `yaml:"code"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type ProjectFixture struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	TeamLead    string `yaml:"team_lead"`
}

func LoadFile(path string) (*Fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &f, nil
}

type Seeder struct {
	txManager    repository.TransactionManager
	userRepo     repository.UserRepository
	taccountRepo repository.TAccountRepository
	projectRepo  repository.ProjectRepository
}

func NewSeeder(
	txManager repository.TransactionManager,
	userRepo repository.UserRepository,
	taccountRepo repository.TAccountRepository,
	projectRepo repository.ProjectRepository,
) *Seeder {
	return &Seeder{
		txManager:    txManager,
		userRepo:     userRepo,
		taccountRepo: taccountRepo,
		projectRepo:  projectRepo,
	}
}

// Run loads the fixture in one transaction. It does nothing and returns false
// when the database already has users.
func (s *Seeder) Run(ctx context.Context, f *Fixture) (bool, error) {
	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		logger.Get().Info("database already contains users, skipping seed")
		return false, nil
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		users, err := s.seedUsers(txCtx, f.Users)
		if err != nil {
			return err
		}
		if err := s.seedTAccounts(txCtx, f.TAccounts); err != nil {
			return err
		}
		return s.seedProjects(txCtx, f.Projects, users)
	})
	if err != nil {
		return false, err
	}

	logger.Get().WithField("users", len(f.Users)).
		WithField("taccounts", len(f.TAccounts)).
		WithField("projects", len(f.Projects)).
		Info("database seeded")
	return true, nil
}

func (s *Seeder) seedUsers(ctx context.Context, fixtures []UserFixture) (map[string]*model.User, error) {
	byEmail := make(map[string]*model.User, len(fixtures))
	for _, uf := range fixtures {
		email := strings.ToLower(strings.TrimSpace(uf.Email))
		if !model.ValidRole(uf.Role) {
			return nil, fmt.Errorf("seed user %s: unknown role %q", email, uf.Role)
		}

		hashed, err := service.HashPassword(uf.Password)
		if err != nil {
			return nil, err
		}

		user := &model.User{
			Email:        email,
			PasswordHash: hashed,
			FullName:     uf.FullName,
			Role:         uf.Role,
			IsActive:     true,
		}
		if uf.Manager != "" {
			manager, ok := byEmail[strings.ToLower(uf.Manager)]
			if !ok {
				return nil, fmt.Errorf("seed user %s: manager %s must be listed before it", email, uf.Manager)
			}
			user.ManagerID = &manager.ID
		}

		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create seed user %s: %w", email, err)
		}
		byEmail[email] = user
	}
	return byEmail, nil
}

func (s *Seeder) seedTAccounts(ctx context.Context, fixtures []TAccountFixture) error {
	for _, tf := range fixtures {
		account := &model.TAccount{
			AccountCode: tf.Code,
			AccountName: tf.Name,
			Description: tf.Description,
			IsActive:    true,
		}
		if err := s.taccountRepo.Create(ctx, account); err != nil {
			return fmt.Errorf("failed to create seed T-account %s: %w", tf.Code, err)
		}
	}
	return nil
}

func (s *Seeder) seedProjects(ctx context.Context, fixtures []ProjectFixture, users map[string]*model.User) error {
	for _, pf := range fixtures {
		lead, ok := users[strings.ToLower(pf.TeamLead)]
		if !ok {
			return fmt.Errorf("seed project %s: unknown team lead %s", pf.Name, pf.TeamLead)
		}
		if !lead.CanLeadProjects() {
			return fmt.Errorf("seed project %s: %s cannot lead projects (role %s)", pf.Name, lead.Email, lead.Role)
		}

		project := &model.Project{
			Name:        pf.Name,
			Description: pf.Description,
			TeamLeadID:  &lead.ID,
			IsActive:    true,
		}
		if err := s.projectRepo.Create(ctx, project); err != nil {
			return fmt.Errorf("failed to create seed project %s: %w", pf.Name, err)
		}
	}
	return nil
}
