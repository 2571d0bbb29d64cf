package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-retail-api/internal/config"
	"github.com/go-retail-api/internal/infrastructure/dynamo"
	googleauth "github.com/go-retail-api/internal/infrastructure/google"
	jwtinfra "github.com/go-retail-api/internal/infrastructure/jwt"
	s3infra "github.com/go-retail-api/internal/infrastructure/s3"
	"github.com/go-retail-api/internal/infrastructure/smtp"
	"github.com/go-retail-api/internal/infrastructure/sns"
	transporthttp "github.com/go-retail-api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// JWT provider (optional — graceful fallback if keys are missing).
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		log.Printf("WARN: JWT provider not available: %v", err)
	}

	// S3 avatar store.
	s3Client := s3infra.NewClient(cfg)
	s3Store := s3infra.NewStore(s3Client, cfg.S3BucketName)

	// SMTP mailer.
	mailer := smtp.NewMailer(cfg)

	// SNS SMS sender (optional — graceful fallback).
	var smsSender sns.SMSSender
	if sender, err := sns.NewSender(cfg); err == nil {
		smsSender = sender
	} else {
		log.Printf("WARN: SNS sender not available: %v", err)
	}

	// Google ID-token verifier (optional — only when a client id is set).
	var googleVerifier *googleauth.Verifier
	if cfg.GoogleClientID != "" {
		googleVerifier = googleauth.NewVerifier(cfg.GoogleClientID)
	} else {
		log.Println("WARN: Google sign-in disabled, GOOGLE_CLIENT_ID not set")
	}

	deps := &transporthttp.Deps{
		UserRepo:         dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		RegistrationRepo: dynamo.NewRegistrationRepo(dynamoClient, cfg.DynamoTables.PendingRegistrations),
		SessionRepo:      dynamo.NewSessionRepo(dynamoClient, cfg.DynamoTables.Sessions),
		ActivityRepo:     dynamo.NewActivityRepo(dynamoClient, cfg.DynamoTables.ActivityLog),
		S3Store:          s3Store,
		Mailer:           mailer,
		SMSSender:        smsSender,
		GoogleVerifier:   googleVerifier,
		JWTProvider:      jwtProvider,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
