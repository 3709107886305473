package main

import (
	"os"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/payment"
	"app/internal/server"
	"app/internal/usecase"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	//.envは無くても起動できる（本番は環境変数で渡す）
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("main: .env not loaded")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("main: config load failed")
	}

	if cfg.GoEnv != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	gormDB, err := db.Connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("main: db connect failed")
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Category{},
		&model.Product{},
		&model.Address{},
		&model.CartProduct{},
		&model.Order{},
		&model.PaymentEvent{},
	); err != nil {
		log.Fatal().Err(err).Msg("main: migrate failed")
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	rtRepo := infraRepo.NewRefreshTokenGormRepository(gormDB)
	categoryRepo := infraRepo.NewCategoryGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	addressRepo := infraRepo.NewAddressGormRepository(gormDB)
	cartRepo := infraRepo.NewCartProductGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	gateway := payment.NewStripeGateway(cfg)

	//Usecase生成
	authUC := usecase.NewAuthUsecase(cfg, userRepo, rtRepo)
	productUC := usecase.NewProductUsecase(productRepo, categoryRepo)
	cartUC := usecase.NewCartUsecase(cartRepo, productRepo)
	addressUC := usecase.NewAddressUsecase(addressRepo)
	orderUC := usecase.NewOrderUsecase(cfg, txManager, userRepo, addressRepo, productRepo, orderRepo, gateway)

	//Handler生成
	h := server.Handlers{
		Auth:    handler.NewAuthHandler(authUC),
		Product: handler.NewProductHandler(productUC),
		Cart:    handler.NewCartHandler(cartUC),
		Address: handler.NewAddressHandler(addressUC),
		Order:   handler.NewOrderHandler(orderUC),
	}

	e := server.New(cfg, h)

	log.Info().Str("port", cfg.Port).Msg("main: server starting")
	if err := server.Start(e, cfg); err != nil {
		log.Fatal().Err(err).Msg("main: server stopped")
	}
}
