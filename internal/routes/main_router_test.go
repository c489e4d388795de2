package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"equipment-store/internal/dto"
	"equipment-store/internal/repositories"
	"equipment-store/internal/services"
	"equipment-store/pkg/config"
	"equipment-store/pkg/customvalidator"
	"equipment-store/pkg/database/migrations"
	"equipment-store/pkg/database/postgresql"
	"equipment-store/pkg/metrics"
	"equipment-store/pkg/service"
	"equipment-store/pkg/utils"
)

// StoreTestSuite drives the HTTP API against a real Postgres and Redis.
// It runs only when TEST_DATABASE_URL is set.
type StoreTestSuite struct {
	suite.Suite
	Echo       *echo.Echo
	DB         *pgxpool.Pool
	Redis      *redis.Client
	AdminToken string
	AliceID    uint64
}

func (suite *StoreTestSuite) SetupSuite() {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		suite.T().Skip("TEST_DATABASE_URL is not set")
	}
	os.Setenv("DATABASE_URL", dsn)

	cfg, err := config.Parse()
	suite.Require().NoError(err)

	ctx := context.Background()
	logger := zap.NewNop()

	dbConn, err := postgresql.ConnectDB(ctx, dsn)
	suite.Require().NoError(err)
	suite.Require().NoError(migrations.Up(dbConn, logger))
	_, err = dbConn.Exec(ctx, "TRUNCATE allocations, equipments, equipment_types, users RESTART IDENTITY CASCADE")
	suite.Require().NoError(err)

	redisAddr := os.Getenv("TEST_REDIS_ADDRESS")
	if redisAddr == "" {
		redisAddr = cfg.Redis.Address
	}
	redisClient := redis.NewClient(&redis.Options{Addr: redisAddr, DB: 1})
	suite.Require().NoError(redisClient.Ping(ctx).Err())
	suite.Require().NoError(redisClient.FlushDB(ctx).Err())

	v, err := customvalidator.New()
	suite.Require().NoError(err)

	e := echo.New()
	e.Validator = utils.NewValidator(v)

	reg := prometheus.NewRegistry()
	suite.Require().NoError(metrics.Register(reg))

	jwtSvc := service.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.AccessTokenTTL, cfg.JWT.RefreshTokenTTL, logger)
	InitRouter(e, dbConn, redisClient, jwtSvc, NewLoggers(logger), v, reg, cfg)

	suite.Echo = e
	suite.DB = dbConn
	suite.Redis = redisClient

	userService := services.NewUserService(repositories.NewTxManager(dbConn), repositories.NewUserRepository(dbConn, logger), nil, logger)
	_, err = userService.CreateUser(ctx, dto.CreateUserDTO{
		Username: "root", Password: "root-pass-1", PasswordConfirm: "root-pass-1", Admin: true,
	})
	suite.Require().NoError(err)

	suite.AdminToken = suite.login("root", "root-pass-1")
}

func (suite *StoreTestSuite) TearDownSuite() {
	if suite.DB != nil {
		suite.DB.Close()
	}
	if suite.Redis != nil {
		suite.Redis.Close()
	}
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Body    json.RawMessage `json:"body"`
}

func (suite *StoreTestSuite) request(method, target, token string, payload interface{}) (*httptest.ResponseRecorder, envelope) {
	var body bytes.Buffer
	if payload != nil {
		suite.Require().NoError(json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, target, &body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	suite.Echo.ServeHTTP(rec, req)

	var env envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}

func (suite *StoreTestSuite) login(username, password string) string {
	rec, env := suite.request(http.MethodPost, "/accounts/login", "", dto.LoginDTO{Username: username, Password: password})
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var auth dto.AuthResponseDTO
	suite.Require().NoError(json.Unmarshal(env.Body, &auth))
	suite.Require().NotEmpty(auth.AccessToken)
	return auth.AccessToken
}

// labels returns the labels of a paginated equipment listing.
func (suite *StoreTestSuite) labels(target string) []string {
	rec, env := suite.request(http.MethodGet, target, suite.AdminToken, nil)
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var listing struct {
		List []dto.EquipmentDTO `json:"list"`
	}
	suite.Require().NoError(json.Unmarshal(env.Body, &listing))
	res := []string{}
	for _, e := range listing.List {
		res = append(res, e.Label)
	}
	return res
}

func (suite *StoreTestSuite) count(target string) int {
	rec, env := suite.request(http.MethodGet, target, suite.AdminToken, nil)
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var listing struct {
		List []json.RawMessage `json:"list"`
	}
	suite.Require().NoError(json.Unmarshal(env.Body, &listing))
	return len(listing.List)
}

func (suite *StoreTestSuite) Test01_RequiresLogin() {
	rec, _ := suite.request(http.MethodGet, "/store/", "", nil)
	suite.Equal(http.StatusUnauthorized, rec.Code)

	rec, _ = suite.request(http.MethodGet, "/healthz", "", nil)
	suite.Equal(http.StatusOK, rec.Code)
}

func (suite *StoreTestSuite) Test02_AddUserIsSuperuserOnly() {
	rec, env := suite.request(http.MethodPost, "/accounts/add-user", suite.AdminToken, dto.CreateUserDTO{
		Username: "alice", Password: "alice-pass-1", PasswordConfirm: "alice-pass-1",
	})
	suite.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var alice dto.UserDTO
	suite.Require().NoError(json.Unmarshal(env.Body, &alice))
	suite.False(alice.IsSuperuser)
	suite.AliceID = alice.ID

	aliceToken := suite.login("alice", "alice-pass-1")
	rec, _ = suite.request(http.MethodPost, "/accounts/add-user", aliceToken, dto.CreateUserDTO{
		Username: "mallory", Password: "mallory-pass", PasswordConfirm: "mallory-pass",
	})
	suite.Equal(http.StatusForbidden, rec.Code)

	rec, _ = suite.request(http.MethodPut, fmt.Sprintf("/accounts/users/%d", alice.ID), aliceToken, map[string]string{"first_name": "Alice"})
	suite.Equal(http.StatusOK, rec.Code, rec.Body.String())
}

func (suite *StoreTestSuite) Test03_LaptopAllocationFlow() {
	suite.Require().NotZero(suite.AliceID, "Test02 must create alice first")
	token := suite.AdminToken

	rec, env := suite.request(http.MethodPost, "/store/add-equipment-type", token, dto.CreateEquipmentTypeDTO{Name: "Laptop"})
	suite.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var laptop dto.EquipmentTypeDTO
	suite.Require().NoError(json.Unmarshal(env.Body, &laptop))

	rec, _ = suite.request(http.MethodGet, "/store/get_label/?equipment_type=Laptop", token, nil)
	suite.Require().Equal(http.StatusOK, rec.Code)
	suite.JSONEq(`"Lap-000001"`, rec.Body.String())

	var unitIDs []uint64
	for i := 0; i < 2; i++ {
		rec, env = suite.request(http.MethodPost, "/store/add-equipment", token, map[string]interface{}{
			"serial_number":     fmt.Sprintf("SN-%d", i),
			"model_number":      "XPS13",
			"brand":             "Dell",
			"price":             "999.99",
			"buy_date":          time.Now().Format("2006-01-02"),
			"equipment_type_id": laptop.ID,
		})
		suite.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
		var unit dto.EquipmentDTO
		suite.Require().NoError(json.Unmarshal(env.Body, &unit))
		suite.Equal(fmt.Sprintf("Lap-%06d", i+1), unit.Label)
		unitIDs = append(unitIDs, unit.ID)
	}

	rec, env = suite.request(http.MethodPost, "/store/create-allocation", token, dto.CreateAllocationDTO{UserID: suite.AliceID, EquipmentID: unitIDs[0]})
	suite.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var allocation dto.AllocationDTO
	suite.Require().NoError(json.Unmarshal(env.Body, &allocation))
	suite.Equal("alice", allocation.User.Username)

	rec, _ = suite.request(http.MethodPost, "/store/create-allocation", token, dto.CreateAllocationDTO{UserID: suite.AliceID, EquipmentID: unitIDs[0]})
	suite.Equal(http.StatusConflict, rec.Code)

	rec, _ = suite.request(http.MethodGet, "/store/get_ids/?equipment_type=Laptop", token, nil)
	suite.Require().Equal(http.StatusOK, rec.Code)
	suite.JSONEq(fmt.Sprintf(`[[%d,"Lap-000002"]]`, unitIDs[1]), rec.Body.String())

	rec, env = suite.request(http.MethodGet, "/store/", token, nil)
	suite.Require().Equal(http.StatusOK, rec.Code)
	var typeList struct {
		List []dto.EquipmentTypeDTO `json:"list"`
	}
	suite.Require().NoError(json.Unmarshal(env.Body, &typeList))
	suite.Require().Len(typeList.List, 1)
	suite.Equal(uint64(1), typeList.List[0].Remaining)

	suite.Equal([]string{"Lap-000001"}, suite.labels("/store/equipments/Laptop/assigned"))
	suite.Equal([]string{"Lap-000002"}, suite.labels("/store/equipments/Laptop/unassigned"))
	suite.Equal([]string{"Lap-000002"}, suite.labels("/store/search-equipment/Laptop?search=SN-1"))
	suite.Equal(1, suite.count("/accounts/search-user?search=alic"))
	suite.Equal(1, suite.count("/store/search-equipment-type?search=lapt"))
	suite.Equal(1, suite.count("/store/search-allocation?search=alice"))

	rec, env = suite.request(http.MethodPut, fmt.Sprintf("/store/update-equipment/Laptop/%d", unitIDs[0]), token, map[string]bool{"under_repair": true})
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var updated dto.EquipmentUpdateResultDTO
	suite.Require().NoError(json.Unmarshal(env.Body, &updated))
	suite.Require().NotNil(updated.ForceReturned)
	suite.Equal(allocation.ID, *updated.ForceReturned)
	suite.Equal("under_repair", updated.Equipment.Status)

	suite.Equal([]string{"Lap-000001"}, suite.labels("/store/equipments/Laptop/under_repair"))
	suite.Empty(suite.labels("/store/equipments/Laptop/assigned"))

	rec, _ = suite.request(http.MethodGet, "/store/search-allocation", token, nil)
	suite.Equal(http.StatusBadRequest, rec.Code)

	rec, _ = suite.request(http.MethodDelete, fmt.Sprintf("/store/delete-equipment-type/%d", laptop.ID), token, nil)
	suite.Require().Equal(http.StatusOK, rec.Code)

	var remaining int
	suite.Require().NoError(suite.DB.QueryRow(context.Background(), "SELECT COUNT(*) FROM allocations").Scan(&remaining))
	suite.Zero(remaining)
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}
