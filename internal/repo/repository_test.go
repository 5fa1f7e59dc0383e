package repo_test

import (
	"testing"

	"github.com/hamed0406/uptimecore/internal/domain"
	"github.com/hamed0406/uptimecore/internal/repo"
	"github.com/hamed0406/uptimecore/internal/repo/memory"
	pg "github.com/hamed0406/uptimecore/internal/repo/postgres"
	"github.com/hamed0406/uptimecore/internal/repo/sqlite"
)

// Compile-time interface satisfaction checks.
// Using external test package avoids import cycle.
func TestInterfaceSatisfaction(t *testing.T) {
	var _ repo.Store = memory.New()
	var _ repo.Store = (*pg.Store)(nil)
	var _ repo.Store = (*sqlite.Store)(nil)
}

func TestCheckDetails_PicksVariant(t *testing.T) {
	plain, err := repo.CheckDetails(&domain.Check{})
	if err != nil || plain != nil {
		t.Fatalf("plain check should have no details, got %q err=%v", plain, err)
	}
	ps, err := repo.CheckDetails(&domain.Check{PageSpeed: &domain.PageSpeedDetails{SEO: 90}})
	if err != nil || len(ps) == 0 {
		t.Fatalf("pagespeed details missing: %q err=%v", ps, err)
	}
	back, err := repo.ScanJSON[domain.PageSpeedDetails](ps)
	if err != nil || back.SEO != 90 {
		t.Fatalf("ScanJSON: %+v err=%v", back, err)
	}
	if none, err := repo.ScanJSON[domain.Thresholds](nil); err != nil || none != nil {
		t.Fatalf("NULL column should scan to nil, got %+v err=%v", none, err)
	}
}
