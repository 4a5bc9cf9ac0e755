package testserver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/kutahiru/idea-labo-sub002/internal/assist"
	"github.com/kutahiru/idea-labo-sub002/internal/domain/brainwriting"
	"github.com/kutahiru/idea-labo-sub002/internal/domain/mandalart"
	"github.com/kutahiru/idea-labo-sub002/internal/domain/osborn"
	"github.com/kutahiru/idea-labo-sub002/internal/events"
	"github.com/kutahiru/idea-labo-sub002/internal/repository"
	"github.com/kutahiru/idea-labo-sub002/internal/sqlite"
	"github.com/kutahiru/idea-labo-sub002/internal/transport"
)

// TestServer hosts the full HTTP stack on an in-memory SQLite database and a
// miniredis-backed event bridge.
type TestServer struct {
	Server    *httptest.Server
	DB        *sqlite.DB
	Bridge    *events.Bridge
	Redis     *miniredis.Miniredis
	Generator *assist.Generator
	TenantID  string
}

// New starts a test server. Tokens are minted with MintToken; the brainwriting
// settings use small fixed values so tests can fill sheets quickly.
func New(t *testing.T, tenantID string, opts ...brainwriting.Option) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	mr := miniredis.RunT(t)
	bridge := events.NewBridge(&redis.Options{Addr: mr.Addr()}, slog.Default())

	sessionRepo := sqlite.NewSessionRepository(db)
	mandalartRepo := sqlite.NewMandalartRepository(db)
	checklistRepo := sqlite.NewChecklistRepository(db)
	identityRepo := sqlite.NewIdentityRepository(db)

	settings := brainwriting.Settings{
		Capacity:  6,
		RowBudget: 6,
		Columns:   3,
		LockTTL:   5 * time.Minute,
	}
	brainwritingSvc := brainwriting.NewService(sessionRepo, bridge, settings, nil, opts...)
	mandalartSvc := mandalart.NewService(mandalartRepo, nil)
	checklistSvc := osborn.NewService(checklistRepo, nil)

	gen := assist.NewGenerator("test-key", "test-model")
	worker := assist.NewWorker(gen, mandalartSvc, checklistSvc, bridge, nil)

	resolver := &tokenResolver{repo: identityRepo}
	router := transport.NewRouter(transport.Services{
		Brainwriting: brainwritingSvc,
		Mandalarts:   mandalartSvc,
		Checklists:   checklistSvc,
		Assist:       worker,
		Events:       bridge,
	}, transport.AuthMiddleware(resolver))

	server := httptest.NewServer(router)

	ts := &TestServer{
		Server:    server,
		DB:        db,
		Bridge:    bridge,
		Redis:     mr,
		Generator: gen,
		TenantID:  tenantID,
	}

	t.Cleanup(func() {
		server.Close()
		_ = bridge.Close()
		_ = db.Close()
	})

	return ts
}

// MintToken registers a bearer token for a user in the server's tenant.
func (ts *TestServer) MintToken(t *testing.T, token, userID string) {
	t.Helper()
	repo := sqlite.NewIdentityRepository(ts.DB)
	require.NoError(t, repo.InsertToken(context.Background(), hashToken(token), ts.TenantID, userID, "test"))
}

type tokenResolver struct {
	repo *sqlite.IdentityRepository
}

func (r *tokenResolver) ResolveIdentity(ctx context.Context, token string) (*repository.Identity, error) {
	id, err := r.repo.ResolveToken(ctx, hashToken(token))
	if err != nil {
		return nil, transport.ErrUnauthorized
	}
	return id, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
