package auth

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/storeadmin/internal/shared"
)

type emailRepo struct {
	admin *Admin
}

func (r emailRepo) FindByEmail(_ context.Context, email string) (*Admin, error) {
	if r.admin == nil || r.admin.Email != email {
		return nil, shared.ErrNotFound
	}
	copied := *r.admin
	return &copied, nil
}

type recordingCompare struct {
	hashes [][]byte
}

func (c *recordingCompare) compare(hash, password []byte) error {
	c.hashes = append(c.hashes, hash)
	return bcrypt.CompareHashAndPassword(hash, password)
}

func TestAuthenticateComparesOnEveryFailure(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.MinCost)
	require.NoError(t, err)
	active := &Admin{ID: 1, Email: "ayu@test.local", PasswordHash: string(hashed), Status: shared.StatusActive}
	inactive := &Admin{ID: 2, Email: "ayu@test.local", PasswordHash: string(hashed), Status: shared.StatusInactive}

	cases := []struct {
		name      string
		admin     *Admin
		email     string
		password  string
		wantDummy bool
	}{
		{name: "unknown email", admin: active, email: "budi@test.local", password: "correctpass", wantDummy: true},
		{name: "inactive admin", admin: inactive, email: "ayu@test.local", password: "correctpass", wantDummy: true},
		{name: "wrong password", admin: active, email: "ayu@test.local", password: "wrongpass"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := &recordingCompare{}
			svc := NewService(emailRepo{admin: tc.admin}, nil)
			svc.compare = rec.compare

			_, err := svc.Authenticate(context.Background(), tc.email, tc.password)
			assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
			require.Len(t, rec.hashes, 1)
			assert.Equal(t, tc.wantDummy, bytes.Equal(rec.hashes[0], dummyHash()))
		})
	}
}
