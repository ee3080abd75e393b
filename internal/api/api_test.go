package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"casino_ledger/internal/api"
	"casino_ledger/internal/domain"
	"casino_ledger/internal/ledger"
	"casino_ledger/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret"

// newTestRouter wires the real routes against an in-memory database,
// with the redis cache disabled
func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Wager{}, &domain.Round{}, &domain.LeaderboardEntry{}))

	engine := ledger.NewEngine(db)
	r := gin.New()
	r.POST("/user", api.RegisterHandler(engine, decimal.NewFromInt(1000)))
	r.GET("/user", api.LoginHandler(db, testSecret))
	r.GET("/leaderboard", api.LeaderboardHandler(engine, nil))
	gameGroup := r.Group("/game")
	gameGroup.Use(middleware.JWTAuthMiddleware(testSecret))
	gameGroup.POST("/bet", api.PlaceBetHandler(engine, nil))
	gameGroup.POST("/finish", api.FinishGameHandler(engine, nil))
	gameGroup.GET("/balance", api.GetBalanceHandler(engine, nil))
	gameGroup.GET("/history", api.GetHistoryHandler(engine, nil))
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.JWTAuthMiddleware(testSecret), middleware.AdminOnlyMiddleware(engine))
	adminGroup.GET("/users", api.ListUsersHandler(db, nil))
	adminGroup.GET("/rounds", api.ListRoundsHandler(db, nil))
	return r, db
}

// doJSON performs one request with an optional bearer token and JSON body
func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// registerAndLogin creates an account and returns its bearer token
func registerAndLogin(t *testing.T, r *gin.Engine, username string) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/user", "", gin.H{
		"email":    username + "@example.com",
		"username": username,
		"password": "secret-pass",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodGet, "/user", "", gin.H{
		"email":    username + "@example.com",
		"password": "secret-pass",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp api.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestRegister(t *testing.T) {
	t.Run("should create an account with the starting balance", func(t *testing.T) {
		r, _ := newTestRouter(t)

		w := doJSON(t, r, http.MethodPost, "/user", "", gin.H{
			"email":    "alice@example.com",
			"username": "alice",
			"password": "secret-pass",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var resp struct {
			Balance decimal.Decimal `json:"balance"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Balance.Equal(decimal.NewFromInt(1000)))
	})

	t.Run("should reject a duplicate identity", func(t *testing.T) {
		r, _ := newTestRouter(t)
		registerAndLogin(t, r, "alice")

		w := doJSON(t, r, http.MethodPost, "/user", "", gin.H{
			"email":    "alice@example.com",
			"username": "alice",
			"password": "secret-pass",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("should reject a short password", func(t *testing.T) {
		r, _ := newTestRouter(t)

		w := doJSON(t, r, http.MethodPost, "/user", "", gin.H{
			"email":    "alice@example.com",
			"username": "alice",
			"password": "short",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGameEndpoints(t *testing.T) {
	t.Run("should require a token", func(t *testing.T) {
		r, _ := newTestRouter(t)

		w := doJSON(t, r, http.MethodPost, "/game/bet", "", gin.H{"amount": "10.00"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("should run bet, settle, balance and leaderboard end to end", func(t *testing.T) {
		r, _ := newTestRouter(t)
		token := registerAndLogin(t, r, "alice")

		// Bet 100.00: balance drops to 900.00 and a wager opens
		w := doJSON(t, r, http.MethodPost, "/game/bet", token, gin.H{"amount": "100.00"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var betResp struct {
			WagerID string          `json:"wager_id"`
			Balance decimal.Decimal `json:"balance"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &betResp))
		require.NotEmpty(t, betResp.WagerID)
		assert.True(t, betResp.Balance.Equal(decimal.NewFromInt(900)))

		// Win at 3.0x: payout 300.00, balance 1200.00
		w = doJSON(t, r, http.MethodPost, "/game/finish", token, gin.H{
			"wager_id":   betResp.WagerID,
			"game_type":  "dice",
			"bet_amount": "100.00",
			"multiplier": "3.0",
			"is_win":     true,
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var finishResp struct {
			Balance decimal.Decimal `json:"balance"`
			Payout  decimal.Decimal `json:"payout"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &finishResp))
		assert.True(t, finishResp.Payout.Equal(decimal.NewFromInt(300)))
		assert.True(t, finishResp.Balance.Equal(decimal.NewFromInt(1200)))

		// Balance endpoint agrees
		w = doJSON(t, r, http.MethodGet, "/game/balance", token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var balResp struct {
			Balance decimal.Decimal `json:"balance"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &balResp))
		assert.True(t, balResp.Balance.Equal(decimal.NewFromInt(1200)))

		// Leaderboard shows the settled round
		w = doJSON(t, r, http.MethodGet, "/leaderboard?sort_by=total_won", "", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var lbResp struct {
			Leaders []api.LeaderEntry `json:"leaders"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &lbResp))
		require.Len(t, lbResp.Leaders, 1)
		assert.Equal(t, "alice", lbResp.Leaders[0].Username)
		assert.Equal(t, int64(1), lbResp.Leaders[0].GamesPlayed)
		assert.True(t, lbResp.Leaders[0].WinRate.Equal(decimal.NewFromInt(100)))
		assert.True(t, lbResp.Leaders[0].BiggestWin.Equal(decimal.NewFromInt(300)))
	})

	t.Run("should map insufficient funds to a client error", func(t *testing.T) {
		r, _ := newTestRouter(t)
		token := registerAndLogin(t, r, "alice")

		w := doJSON(t, r, http.MethodPost, "/game/bet", token, gin.H{"amount": "5000.00"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Insufficient funds")
	})

	t.Run("should map an unknown wager to not found", func(t *testing.T) {
		r, _ := newTestRouter(t)
		token := registerAndLogin(t, r, "alice")

		w := doJSON(t, r, http.MethodPost, "/game/finish", token, gin.H{
			"wager_id":   "no-such-wager",
			"game_type":  "dice",
			"bet_amount": "10.00",
			"multiplier": "2.0",
			"is_win":     true,
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("should page the round history", func(t *testing.T) {
		r, _ := newTestRouter(t)
		token := registerAndLogin(t, r, "alice")

		// Settle two rounds
		for i := 0; i < 2; i++ {
			w := doJSON(t, r, http.MethodPost, "/game/bet", token, gin.H{"amount": "10.00"})
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			var betResp struct {
				WagerID string `json:"wager_id"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &betResp))
			w = doJSON(t, r, http.MethodPost, "/game/finish", token, gin.H{
				"wager_id":   betResp.WagerID,
				"game_type":  "crash",
				"bet_amount": "10.00",
				"multiplier": "0",
				"is_win":     false,
			})
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		}

		w := doJSON(t, r, http.MethodGet, "/game/history?page=1&page_size=1", token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var histResp struct {
			Rounds     []domain.Round `json:"rounds"`
			Total      int64          `json:"total"`
			TotalPages int            `json:"total_pages"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &histResp))
		assert.Len(t, histResp.Rounds, 1)
		assert.Equal(t, int64(2), histResp.Total)
		assert.Equal(t, 2, histResp.TotalPages)
	})

	t.Run("should order the same for an unknown sort key as for total_won", func(t *testing.T) {
		r, _ := newTestRouter(t)
		registerAndLogin(t, r, "alice")
		registerAndLogin(t, r, "bob")

		wWon := doJSON(t, r, http.MethodGet, "/leaderboard?sort_by=total_won&limit=5", "", nil)
		wUnknown := doJSON(t, r, http.MethodGet, "/leaderboard?sort_by=unknown_key&limit=5", "", nil)
		require.Equal(t, http.StatusOK, wWon.Code)
		require.Equal(t, http.StatusOK, wUnknown.Code)

		var won, unknown struct {
			Leaders []api.LeaderEntry `json:"leaders"`
		}
		require.NoError(t, json.Unmarshal(wWon.Body.Bytes(), &won))
		require.NoError(t, json.Unmarshal(wUnknown.Body.Bytes(), &unknown))
		require.Equal(t, len(won.Leaders), len(unknown.Leaders))
		for i := range won.Leaders {
			assert.Equal(t, won.Leaders[i].Username, unknown.Leaders[i].Username)
		}
		assert.LessOrEqual(t, len(unknown.Leaders), 5)
	})
}

func TestAdminEndpoints(t *testing.T) {
	t.Run("should forbid regular users", func(t *testing.T) {
		r, _ := newTestRouter(t)
		token := registerAndLogin(t, r, "alice")

		w := doJSON(t, r, http.MethodGet, "/admin/users", token, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("should list accounts and rounds for admins", func(t *testing.T) {
		r, db := newTestRouter(t)
		token := registerAndLogin(t, r, "alice")
		require.NoError(t, db.Model(&domain.User{}).Where("username = ?", "alice").Update("role", "admin").Error)

		// Settle one losing round to have something to list
		w := doJSON(t, r, http.MethodPost, "/game/bet", token, gin.H{"amount": "10.00"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var betResp struct {
			WagerID string `json:"wager_id"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &betResp))
		w = doJSON(t, r, http.MethodPost, "/game/finish", token, gin.H{
			"wager_id":   betResp.WagerID,
			"game_type":  "minefield",
			"bet_amount": "10.00",
			"multiplier": "0",
			"is_win":     false,
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = doJSON(t, r, http.MethodGet, "/admin/users", token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var usersResp struct {
			Users []api.UserAdminResponse `json:"users"`
			Total int64                   `json:"total"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &usersResp))
		require.Len(t, usersResp.Users, 1)
		assert.Equal(t, "alice", usersResp.Users[0].Username)
		assert.True(t, usersResp.Users[0].Balance.Equal(decimal.NewFromInt(990)))

		w = doJSON(t, r, http.MethodGet, "/admin/rounds?game_type=minefield&is_win=false", token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var roundsResp struct {
			Rounds []domain.Round `json:"rounds"`
			Total  int64          `json:"total"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &roundsResp))
		require.Len(t, roundsResp.Rounds, 1)
		assert.Equal(t, "minefield", roundsResp.Rounds[0].GameType)
		assert.False(t, roundsResp.Rounds[0].IsWin)
	})
}
