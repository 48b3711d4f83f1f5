package service

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/leakagelink/spin-to-wealth-online-sub000/internal/game"
	"github.com/leakagelink/spin-to-wealth-online-sub000/internal/history"
	"github.com/leakagelink/spin-to-wealth-online-sub000/internal/ledger"
	"github.com/leakagelink/spin-to-wealth-online-sub000/internal/middleware"
)

// steadySource never crashes a round: every draw lands above any crash
// probability the bands can produce.
type steadySource struct{}

func (steadySource) Float64() float64 { return 0.999 }
func (steadySource) Intn(n int) int   { return 0 }

func authedContext(t *testing.T, userID int64, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.ContextUserIDKey, userID)
	return c, w
}

func TestCashOutResolvesPublishedRound(t *testing.T) {
	l := ledger.New(nullStore{})
	defer l.Close()
	svc := NewCrashService(l, history.NewRecorder(0), NewCrashHub(), nil, testGameConfig())

	proc := game.NewMultiplierProcess(steadySource{}, game.DefaultCrashConfig())
	roundID, err := proc.Start(100)
	if err != nil {
		t.Fatal(err)
	}

	// A round reservation is only ever visible fully initialized, runner
	// included; a cash-out racing the placement must find it usable.
	runner := game.NewRunner(proc, time.Millisecond, 0)
	svc.mu.Lock()
	svc.rounds[7] = &activeRound{roundID: roundID, amount: 100, runner: runner}
	svc.mu.Unlock()
	go runner.Run()

	time.Sleep(20 * time.Millisecond)

	c, w := authedContext(t, 7, "")
	svc.CashOut(c)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", w.Code, w.Body.String())
	}

	var body struct {
		Multiplier float64 `json:"multiplier"`
		WinAmount  float64 `json:"win_amount"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Multiplier <= 1.0 {
		t.Errorf("multiplier = %v, want > 1", body.Multiplier)
	}
	if want := game.Winnings(100, body.Multiplier); body.WinAmount != want {
		t.Errorf("win_amount = %v, want %v", body.WinAmount, want)
	}
}

func TestCashOutWithoutActiveRound(t *testing.T) {
	l := ledger.New(nullStore{})
	defer l.Close()
	svc := NewCrashService(l, history.NewRecorder(0), NewCrashHub(), nil, testGameConfig())

	c, w := authedContext(t, 7, "")
	svc.CashOut(c)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestRejectedCrashBetKeepsCooldownClear(t *testing.T) {
	// nullStore reports a zero balance, so every bet is rejected with 402.
	l := ledger.New(nullStore{})
	defer l.Close()
	svc := NewCrashService(l, history.NewRecorder(0), NewCrashHub(), nil, testGameConfig())

	for i := 0; i < 2; i++ {
		c, w := authedContext(t, 7, `{"amount":200}`)
		svc.PlaceCrashBet(c)
		if w.Code != http.StatusPaymentRequired {
			t.Fatalf("attempt %d: status = %d, want 402", i+1, w.Code)
		}
	}
}

func TestRejectedRouletteBetKeepsCooldownClear(t *testing.T) {
	l := ledger.New(nullStore{})
	defer l.Close()
	svc := NewRouletteService(l, history.NewRecorder(0), nil, testGameConfig())

	for i := 0; i < 2; i++ {
		c, w := authedContext(t, 7, `{"amount":200,"bet":"red"}`)
		svc.PlaceRouletteBet(c)
		if w.Code != http.StatusPaymentRequired {
			t.Fatalf("attempt %d: status = %d, want 402", i+1, w.Code)
		}
	}
}
