//go:build integration

package source_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	"profiled/internal/profile/source"
	"profiled/pkg/testutil/containers"
)

const createUserProfiles = `
CREATE TABLE IF NOT EXISTS user_profiles (
	user_id         TEXT PRIMARY KEY,
	name            TEXT,
	email           TEXT,
	display_name    TEXT,
	country         TEXT,
	bio             TEXT,
	avatar_url      TEXT,
	timezone        TEXT,
	country_display TEXT
)`

type PostgresSourceSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	source   *source.PostgresSource
}

func TestPostgresSourceSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresSourceSuite))
}

func (s *PostgresSourceSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	_, err := s.postgres.Pool.Exec(context.Background(), createUserProfiles)
	s.Require().NoError(err)
	s.source = source.NewPostgresSource(s.postgres.Pool)
}

func (s *PostgresSourceSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "user_profiles"))
}

func (s *PostgresSourceSuite) insert(userID string, name, email *string) {
	_, err := s.postgres.Pool.Exec(context.Background(),
		`INSERT INTO user_profiles (user_id, name, email) VALUES ($1, $2, $3)`,
		userID, name, email,
	)
	s.Require().NoError(err)
}

func strPtr(v string) *string { return &v }

func (s *PostgresSourceSuite) TestFetchManyReturnsOnlyKnownRows() {
	s.insert("u-1", strPtr("Alex"), strPtr("a@x.com"))
	s.insert("u-2", nil, strPtr("b@x.com"))

	fetched, err := s.source.FetchMany(context.Background(), []string{"u-1", "u-2", "u-missing"})
	s.Require().NoError(err)
	s.Require().Len(fetched, 2)

	s.Equal("Alex", fetched["u-1"].Name)
	s.Equal("a@x.com", fetched["u-1"].Email)

	// NULL columns surface as absent fields, not errors.
	s.Equal("", fetched["u-2"].Name)
	s.Equal("b@x.com", fetched["u-2"].Email)

	_, ok := fetched["u-missing"]
	s.False(ok)
}

func (s *PostgresSourceSuite) TestFetchManyEmptyInput() {
	fetched, err := s.source.FetchMany(context.Background(), nil)
	s.Require().NoError(err)
	s.Empty(fetched)
}

func (s *PostgresSourceSuite) TestFetchManySpansChunks() {
	// More identifiers than one chunk holds, to exercise the parallel path.
	const rows = 450
	ids := make([]string, 0, rows)
	for i := 0; i < rows; i++ {
		id := fmt.Sprintf("u-%04d", i)
		ids = append(ids, id)
		s.insert(id, strPtr("User "+id), nil)
	}

	fetched, err := s.source.FetchMany(context.Background(), ids)
	s.Require().NoError(err)
	s.Len(fetched, rows)
}
