package clubrepo

import (
	"testing"

	"github.com/Overland-East-Bay/club-portal-api/internal/adapters/contracttest"
	clubrepoport "github.com/Overland-East-Bay/club-portal-api/internal/ports/out/clubrepo"
)

func TestContract_ClubRepo(t *testing.T) {
	contracttest.RunClubRepo(t, func(t *testing.T) (clubrepoport.Repository, func()) {
		t.Helper()
		return NewRepo(), nil
	})
}
