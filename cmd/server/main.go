package main

import (
	"context"
	"net/http"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/IllTzeko/wombokombo-gameserver/auth"
	"github.com/IllTzeko/wombokombo-gameserver/crypto"
	"github.com/IllTzeko/wombokombo-gameserver/game"
	"github.com/IllTzeko/wombokombo-gameserver/logger"
	"github.com/IllTzeko/wombokombo-gameserver/metrics"
	"github.com/IllTzeko/wombokombo-gameserver/migrations"
	"github.com/IllTzeko/wombokombo-gameserver/storage"
)

func CreateServer(allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(ctx *gin.Context) { ctx.String(200, "healthy") })
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	r.Use(func(ctx *gin.Context) {
		origin := ctx.Request.Header.Get("Origin")

		if origin == "" || slices.Contains(allowedOrigins, origin) {
			ctx.Next()
			return
		}
		ctx.String(http.StatusForbidden, "forbidden origin")
		ctx.Abort()
	})

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Authorization",
			"Upgrade",
			"Connection",
			"Sec-WebSocket-Key",
			"Sec-WebSocket-Version",
			"Sec-WebSocket-Extensions",
			"Sec-WebSocket-Protocol",
		},
	}))

	return r
}

func main() {
	// .env is optional, real deployments set the environment directly
	_ = godotenv.Load()

	if level, exists := os.LookupEnv("LOG_LEVEL"); exists {
		logger.SetLevel(level)
	}

	ALLOWED_ORIGINS, exists := os.LookupEnv("ALLOWED_ORIGINS")
	if !exists {
		logger.Fatal("Missing allowed origins")
	}
	allowedOrigins := strings.Split(ALLOWED_ORIGINS, ",")

	POSTGRES_URL, exists := os.LookupEnv("POSTGRES_URL")
	if !exists {
		logger.Fatal("Missing postgres url")
	}

	JWT_KEY, exists := os.LookupEnv("JWT_KEY")
	if !exists {
		logger.Fatal("Missing jwt signing key")
	}

	listenAddr, exists := os.LookupEnv("LISTEN_ADDR")
	if !exists {
		listenAddr = ":5000"
	}

	if err := migrations.Migrate(POSTGRES_URL); err != nil {
		logger.Fatalf("Couldn't run migrations: %v", err)
	}

	pgRepo, err := storage.NewPostgresRepo(context.Background(), POSTGRES_URL)
	if err != nil {
		logger.Fatalf("Couldn't connect to postgres: %v", err)
	}
	defer pgRepo.Close()

	tokenAge := time.Hour * 24 * 7 // 7 days
	passwordHasher := crypto.NewArgon2idHasher(3, 1024*64, 32, 16, 1)
	tokenManager := crypto.NewJWTManager(JWT_KEY, tokenAge)

	authService := auth.NewService(pgRepo, passwordHasher, tokenManager)
	authHandler := auth.NewAuthHandler(authService, tokenAge)

	r := CreateServer(allowedOrigins)

	{
		authGroup := r.Group("/auth")
		authGroup.POST("/signup", authHandler.SignupHandler)
		authGroup.POST("/login", authHandler.LoginHandler)
		authGroup.POST("/logout", authHandler.LogoutHandler)
		authGroup.GET("/refresh", authHandler.RefreshSessionHandler)
	}

	gameService := game.NewService(game.NewIdGen(), authService, pgRepo)
	game.StartTickers(context.Background(), gameService)

	gameHandler := game.NewGameHandler(gameService)
	{
		gameGroup := r.Group("/game")
		gameGroup.Use(authHandler.RequireAuthMiddleware(time.Second * 2))

		gameGroup.GET("/create", gameHandler.CreateRoomHandler)
		gameGroup.GET("/join/:roomid", gameHandler.JoinRoomHandler)
		gameGroup.GET("/rooms", gameHandler.ListRoomsHandler)
	}

	logger.Infof("api listening on %s", listenAddr)
	err = r.Run(listenAddr)
	logger.Fatalf("Couldn't start server: %v", err)
}
