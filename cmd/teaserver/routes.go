package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	authapi "pluckandpay/http-server/auth"
	paydelete "pluckandpay/http-server/payments/delete"
	paygenerate "pluckandpay/http-server/payments/generate"
	payget "pluckandpay/http-server/payments/get"
	paysave "pluckandpay/http-server/payments/save"
	payupdate "pluckandpay/http-server/payments/update"
	plkdelete "pluckandpay/http-server/pluckers/delete"
	plkget "pluckandpay/http-server/pluckers/get"
	plksave "pluckandpay/http-server/pluckers/save"
	plkupdate "pluckandpay/http-server/pluckers/update"
	recdelete "pluckandpay/http-server/records/delete"
	recget "pluckandpay/http-server/records/get"
	recsave "pluckandpay/http-server/records/save"
	recupdate "pluckandpay/http-server/records/update"
	repgenerate "pluckandpay/http-server/reports/generate"
	repstats "pluckandpay/http-server/reports/stats"
	"pluckandpay/internal/config"
	mwauth "pluckandpay/internal/middleware/auth"
	authservice "pluckandpay/internal/service/auth"
	paymentservice "pluckandpay/internal/service/payment"
	reportservice "pluckandpay/internal/service/report"
	"pluckandpay/internal/storage/mysql"
)

func routes(
	cfg config.Config,
	log *slog.Logger,
	storage *mysql.Storage,
	authSvc *authservice.Service,
	paymentSvc *paymentservice.Service,
	reportSvc *reportservice.Service,
) *chi.Mux {
	router := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	router.Use(corsHandler.Handler)

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authapi.Register(log, authSvc))
			r.Post("/login", authapi.Login(log, authSvc))

			r.Group(func(r chi.Router) {
				r.Use(mwauth.JWT(cfg.JWTSecret))
				r.Get("/me", authapi.Me(log, authSvc))
				r.Put("/profile", authapi.UpdateProfile(log, authSvc))
			})
		})

		// Everything below requires a verified token.
		r.Group(func(r chi.Router) {
			r.Use(mwauth.JWT(cfg.JWTSecret))

			r.Route("/pluckers", func(r chi.Router) {
				r.Get("/", plkget.GetPluckers(log, storage))
				r.Post("/", plksave.SavePlucker(log, storage))
				r.Get("/top", plkget.GetTopPluckers(log, storage))
				r.Get("/{id}", plkget.GetPlucker(log, storage))
				r.Put("/{id}", plkupdate.UpdatePlucker(log, storage))
				r.Delete("/{id}", plkdelete.DeletePlucker(log, storage))
			})

			r.Route("/records", func(r chi.Router) {
				r.Get("/", recget.GetRecords(log, storage))
				r.Post("/", recsave.SaveRecord(log, storage))
				r.Get("/{id}", recget.GetRecord(log, storage))
				r.Put("/{id}", recupdate.UpdateRecord(log, storage))
				r.Delete("/{id}", recdelete.DeleteRecord(log, storage))
			})

			r.Route("/payments", func(r chi.Router) {
				r.Get("/", payget.GetPayments(log, storage))
				r.Post("/", paysave.SavePayment(log, storage))
				r.Post("/generate", paygenerate.GeneratePayment(log, paymentSvc))
				r.Get("/plucker/{id}", payget.GetPaymentsByPlucker(log, storage))
				r.Get("/{id}", payget.GetPayment(log, storage))
				r.Put("/{id}", payupdate.UpdatePayment(log, storage))
				r.Put("/{id}/complete", payupdate.CompletePayment(log, storage))
				r.Delete("/{id}", paydelete.DeletePayment(log, storage))
			})

			r.Route("/reports", func(r chi.Router) {
				r.Get("/dashboard-stats", repstats.DashboardStats(log, reportSvc))
				r.Get("/pluckers", repgenerate.PluckerReportPDF(log, reportSvc))
				r.Get("/records/excel", repgenerate.RecordsExcel(log, reportSvc))
			})
		})
	})

	// Generated report files, addressable by filename.
	fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir)))
	router.Handle("/uploads/*", fileServer)

	return router
}
