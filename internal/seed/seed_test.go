package seed

import (
	"context"
	"testing"

	"travelapproval/internal/model"
	"travelapproval/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type passthroughTx struct{}

func (passthroughTx) RunInTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type memUsers struct {
	repository.UserRepository
	users []*model.User
}

func (m *memUsers) Count(context.Context) (int64, error) { return int64(len(m.users)), nil }

func (m *memUsers) Create(_ context.Context, u *model.User) error {
	u.ID = uuid.New()
	m.users = append(m.users, u)
	return nil
}

type memTAccounts struct {
	repository.TAccountRepository
	accounts []*model.TAccount
}

func (m *memTAccounts) Create(_ context.Context, a *model.TAccount) error {
	a.ID = uuid.New()
	m.accounts = append(m.accounts, a)
	return nil
}

type memProjects struct {
	repository.ProjectRepository
	projects []*model.Project
}

func (m *memProjects) Create(_ context.Context, p *model.Project) error {
	p.ID = uuid.New()
	m.projects = append(m.projects, p)
	return nil
}

func newSeeder() (*Seeder, *memUsers, *memTAccounts, *memProjects) {
	users, accounts, projects := &memUsers{}, &memTAccounts{}, &memProjects{}
	return NewSeeder(passthroughTx{}, users, accounts, projects), users, accounts, projects
}

func TestLoadFile_DevelopmentFixture(t *testing.T) {
	f, err := LoadFile("../../configs/seed.yaml")
	require.NoError(t, err)

	assert.Len(t, f.Users, 6)
	assert.Len(t, f.TAccounts, 5)
	assert.Len(t, f.Projects, 3)
	assert.Equal(t, "T-1001", f.TAccounts[0].Code)
	assert.Equal(t, "manager@xyz.dk", f.Users[4].Manager)
}

func TestRun(t *testing.T) {
	seeder, users, accounts, projects := newSeeder()
	f := &Fixture{
		Users: []UserFixture{
			{Email: "Manager@xyz.dk", Password: "manager123", FullName: "Manager Name", Role: model.RoleManager},
			{Email: "employee1@xyz.dk", Password: "employee123", FullName: "Employee One", Role: model.RoleEmployee, Manager: "manager@xyz.dk"},
		},
		TAccounts: []TAccountFixture{{Code: "T-1001", Name: "Sales Travel"}},
		Projects:  []ProjectFixture{{Name: "Project Beta", TeamLead: "manager@xyz.dk"}},
	}

	seeded, err := seeder.Run(context.Background(), f)
	require.NoError(t, err)
	assert.True(t, seeded)

	require.Len(t, users.users, 2)
	manager, employee := users.users[0], users.users[1]
	assert.Equal(t, "manager@xyz.dk", manager.Email)
	require.NotNil(t, employee.ManagerID)
	assert.Equal(t, manager.ID, *employee.ManagerID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(employee.PasswordHash), []byte("employee123")))

	require.Len(t, accounts.accounts, 1)
	require.Len(t, projects.projects, 1)
	assert.Equal(t, manager.ID, *projects.projects[0].TeamLeadID)

	seeded, err = seeder.Run(context.Background(), f)
	require.NoError(t, err)
	assert.False(t, seeded, "second run must be skipped once users exist")
	assert.Len(t, users.users, 2)
}

func TestRun_RejectsBrokenFixtures(t *testing.T) {
	tests := []struct {
		name    string
		fixture *Fixture
		msg     string
	}{
		{
			name: "manager listed later",
			fixture: &Fixture{Users: []UserFixture{
				{Email: "e@xyz.dk", Password: "x", Role: model.RoleEmployee, Manager: "m@xyz.dk"},
				{Email: "m@xyz.dk", Password: "x", Role: model.RoleManager},
			}},
			msg: "must be listed before it",
		},
		{
			name:    "unknown role",
			fixture: &Fixture{Users: []UserFixture{{Email: "x@xyz.dk", Password: "x", Role: "intern"}}},
			msg:     "unknown role",
		},
		{
			name: "employee as team lead",
			fixture: &Fixture{
				Users:    []UserFixture{{Email: "e@xyz.dk", Password: "x", Role: model.RoleEmployee}},
				Projects: []ProjectFixture{{Name: "Project Alpha", TeamLead: "e@xyz.dk"}},
			},
			msg: "cannot lead projects",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seeder, _, _, _ := newSeeder()
			_, err := seeder.Run(context.Background(), tt.fixture)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("users: [unterminated"))
	assert.Error(t, err)
}
