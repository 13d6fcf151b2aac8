package replen

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/ClaudioSBezerra/JC-CP01-sub001/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MockGateway stands in for the warehouse system on companies flagged with
// use_mock_gateway. FetchStock draws every location down by a pseudo-random
// fraction of its max so under-minimum states show up within a few cycles;
// SendWave acknowledges with a generated reference.
//
// REPLEN_MOCK_FAIL=fetch|send|all injects failures for manual testing of the
// error paths.
type MockGateway struct {
	DB *gorm.DB

	mu  sync.Mutex
	rng *rand.Rand
}

func NewMockGateway(db *gorm.DB) *MockGateway {
	return &MockGateway{
		DB:  db,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewSeededMockGateway keeps the draw-down deterministic. Tests use it.
func NewSeededMockGateway(db *gorm.DB, seed int64) *MockGateway {
	return &MockGateway{
		DB:  db,
		rng: rand.New(rand.NewSource(seed)),
	}
}

func (g *MockGateway) FetchStock(ctx context.Context, companyId string, branch string) ([]StockLevel, error) {
	if mockFailEnabled("fetch") {
		return nil, errors.New("mock gateway: injected fetch failure")
	}

	records, err := models.ListBranchStock(ctx, g.DB, companyId, branch)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	levels := make([]StockLevel, 0, len(records))
	for _, rec := range records {
		if seen[rec.ProductCode] {
			continue
		}
		seen[rec.ProductCode] = true
		levels = append(levels, StockLevel{
			ProductCode: rec.ProductCode,
			CurrentQty:  g.drawDown(rec),
		})
	}
	return levels, nil
}

func (g *MockGateway) SendWave(ctx context.Context, companyId string, payload WavePayload) (string, error) {
	if mockFailEnabled("send") {
		return "", errors.New("mock gateway: injected dispatch failure")
	}
	if len(payload.Tasks) == 0 {
		return "", errors.New("mock gateway: empty wave payload")
	}
	g.mu.Lock()
	n := g.rng.Intn(900000) + 100000
	g.mu.Unlock()
	return fmt.Sprintf("MOCK-%s-%d", payload.WaveNumber, n), nil
}

// drawDown simulates picking activity: up to 40% of max leaves the location,
// never below zero.
func (g *MockGateway) drawDown(rec models.StockRecord) decimal.Decimal {
	g.mu.Lock()
	fraction := g.rng.Float64() * 0.4
	g.mu.Unlock()

	consumed := rec.MaxQty.Mul(decimal.NewFromFloat(fraction)).Round(0)
	next := rec.CurrentQty.Sub(consumed)
	if next.IsNegative() {
		next = decimal.Zero
	}
	return next
}

func mockFailEnabled(op string) bool {
	mode := strings.ToLower(strings.TrimSpace(os.Getenv("REPLEN_MOCK_FAIL")))
	return mode == op || mode == "all"
}
