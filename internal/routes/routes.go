package routes

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-settlement/internal/audit"
	"github.com/BruksfildServices01/barber-settlement/internal/config"
	"github.com/BruksfildServices01/barber-settlement/internal/domain/payment"
	"github.com/BruksfildServices01/barber-settlement/internal/domain/role"
	"github.com/BruksfildServices01/barber-settlement/internal/handlers"
	"github.com/BruksfildServices01/barber-settlement/internal/infra/cache"
	"github.com/BruksfildServices01/barber-settlement/internal/infra/gateway"
	infraRepo "github.com/BruksfildServices01/barber-settlement/internal/infra/repository"
	"github.com/BruksfildServices01/barber-settlement/internal/infra/storage"
	"github.com/BruksfildServices01/barber-settlement/internal/middleware"
	"github.com/BruksfildServices01/barber-settlement/internal/timezone"
	ucAppointment "github.com/BruksfildServices01/barber-settlement/internal/usecase/appointment"
	ucLoyalty "github.com/BruksfildServices01/barber-settlement/internal/usecase/loyalty"
	ucPayment "github.com/BruksfildServices01/barber-settlement/internal/usecase/payment"
	ucReport "github.com/BruksfildServices01/barber-settlement/internal/usecase/report"
)

// imageStore is satisfied by both the appointment and the payment use case
// interfaces.
type imageStore interface {
	ucAppointment.ImageStore
	ucPayment.ImageStore
}

// RegisterRoutes wires every dependency and mounts the API. The returned
// dispatcher must be closed on shutdown so queued audit events are written.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config) *audit.Dispatcher {

	// ======================================================
	// 🔧 INFRA (SINGLETONS)
	// ======================================================
	appointmentRepo := infraRepo.NewAppointmentGormRepository(db)

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger)

	var clock timezone.Clock // relógio real

	redisClient := cache.NewRedisClient(
		context.Background(),
		cfg.Redis.Addr,
		cfg.Redis.Password,
		cfg.Redis.DB,
	)
	reportCache, err := cache.New(redisClient, cfg.Cache.ReportSize, cfg.Cache.ReportTTL)
	if err != nil {
		log.Printf("report cache disabled: %v", err)
		reportCache = nil
	}

	var images imageStore
	if cfg.StorageEnabled() {
		images = storage.NewS3ImageStore(storage.S3Config{
			Endpoint:      cfg.Storage.Endpoint,
			Region:        cfg.Storage.Region,
			Bucket:        cfg.Storage.Bucket,
			AccessKey:     cfg.Storage.AccessKey,
			SecretKey:     cfg.Storage.SecretKey,
			PublicBaseURL: cfg.Storage.PublicBaseURL,
			Limits: storage.Limits{
				MaxSide:   cfg.Storage.MaxSide,
				MaxBytes:  cfg.Storage.MaxUploadBytes,
				MaxPixels: cfg.Storage.MaxPixels,
			},
		})
	} else {
		log.Println("image storage disabled: S3_BUCKET not set")
	}

	var paymentGateway payment.Gateway
	if cfg.MercadoPago.AccessToken != "" {
		mp, err := gateway.NewMercadoPago(cfg.MercadoPago.AccessToken)
		if err != nil {
			log.Printf("mercadopago disabled: %v", err)
		} else {
			paymentGateway = mp
		}
	}

	program := cfg.Program()

	// ======================================================
	// 🧠 USE CASES
	// ======================================================
	createBookingUC := ucAppointment.NewCreateBooking(appointmentRepo, auditDispatcher, clock)
	listByStatusUC := ucAppointment.NewListByStatus(appointmentRepo)
	approveAppointmentUC := ucAppointment.NewApproveAppointment(appointmentRepo, auditDispatcher, clock)
	rejectAppointmentUC := ucAppointment.NewRejectAppointment(appointmentRepo, auditDispatcher, clock)
	sendToReviewUC := ucAppointment.NewSendToReview(appointmentRepo, auditDispatcher, clock)
	markAttendanceUC := ucAppointment.NewMarkAttendance(appointmentRepo, auditDispatcher, clock)
	markNoShowUC := ucAppointment.NewMarkNoShow(appointmentRepo, auditDispatcher, clock)
	completeAppointmentUC := ucAppointment.NewCompleteAppointment(appointmentRepo, auditDispatcher, clock)
	attachPhotoUC := ucAppointment.NewAttachPhoto(appointmentRepo, images, auditDispatcher)

	approvePaymentUC := ucPayment.NewApprovePayment(appointmentRepo, auditDispatcher, clock)
	rejectPaymentUC := ucPayment.NewRejectPayment(
		appointmentRepo,
		auditDispatcher,
		clock,
		cfg.Settlement.FalseVoucherThreshold,
	)
	submitVoucherUC := ucPayment.NewSubmitVoucher(appointmentRepo, images, auditDispatcher)
	gatewayStatusUC := ucPayment.NewGatewayStatus(appointmentRepo, paymentGateway)
	clearFlagsUC := ucPayment.NewClearSecurityFlags(appointmentRepo, auditDispatcher)

	commissionReportUC := ucReport.NewCommissionReport(appointmentRepo, reportCache, cfg.Rate())

	loyaltyAccountUC := ucLoyalty.NewGetAccount(appointmentRepo, program)
	accrueUC := ucLoyalty.NewAccrue(appointmentRepo, auditDispatcher, clock, program)
	redeemUC := ucLoyalty.NewRedeem(appointmentRepo, auditDispatcher, clock, program)
	grantBonusUC := ucLoyalty.NewGrantBonus(appointmentRepo, auditDispatcher, clock, program)

	// ======================================================
	// 🧩 HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg, auditDispatcher)
	meHandler := handlers.NewMeHandler(db)
	barbershopHandler := handlers.NewBarbershopHandler(db, auditDispatcher)
	barberProductHandler := handlers.NewBarberProductHandler(db, auditDispatcher)
	clientHandler := handlers.NewClientHandler(db, clearFlagsUC)
	auditLogsHandler := handlers.NewAuditLogsHandler(db)

	appointmentHandler := handlers.NewAppointmentHandler(
		createBookingUC,
		listByStatusUC,
		approveAppointmentUC,
		rejectAppointmentUC,
		sendToReviewUC,
		markAttendanceUC,
		markNoShowUC,
		completeAppointmentUC,
		attachPhotoUC,
	)

	paymentHandler := handlers.NewPaymentHandler(
		approvePaymentUC,
		rejectPaymentUC,
		submitVoucherUC,
		gatewayStatusUC,
	)

	reportHandler := handlers.NewReportHandler(commissionReportUC, clock)

	loyaltyHandler := handlers.NewLoyaltyHandler(
		loyaltyAccountUC,
		accrueUC,
		redeemUC,
		grantBonusUC,
	)

	// ======================================================
	// 🌐 API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// 🔐 AUTH
		// ------------------------------
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// 🔐 API PRIVADA
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		{
			admins := middleware.RequireRole(role.Admins)

			// imagem + campos do formulário
			uploadLimit := middleware.MaxBodySize(cfg.Storage.MaxUploadBytes + 1<<20)

			secured.GET("/me", meHandler.GetMe)

			secured.GET("/me/barbershop", barbershopHandler.GetMeBarbershop)
			secured.PATCH("/me/barbershop", admins, barbershopHandler.UpdateMeBarbershop)

			secured.POST("/me/staff", admins, authHandler.CreateStaff)

			secured.GET("/me/products", barberProductHandler.List)
			secured.POST("/me/products", admins, barberProductHandler.Create)
			secured.PATCH("/me/products/:id", admins, barberProductHandler.Update)

			// ------------------------------
			// CLIENTS
			// ------------------------------
			secured.GET("/me/clients", middleware.RequireRole(role.Staff), clientHandler.List)
			secured.DELETE("/me/clients/:id/security-flags", clientHandler.ClearSecurityFlags)

			secured.GET("/me/clients/:id/loyalty", loyaltyHandler.Account)
			secured.POST("/me/clients/:id/loyalty/redeem", loyaltyHandler.Redeem)
			secured.POST("/me/clients/:id/loyalty/bonus", loyaltyHandler.Bonus)

			// ------------------------------
			// APPOINTMENTS
			// ------------------------------
			secured.POST("/me/appointments", appointmentHandler.Create)
			secured.GET("/me/appointments", appointmentHandler.ListByStatus)
			secured.PATCH("/me/appointments/:id/approve", appointmentHandler.Approve)
			secured.PATCH("/me/appointments/:id/reject", appointmentHandler.Reject)
			secured.PATCH("/me/appointments/:id/review", appointmentHandler.Review)
			secured.PATCH("/me/appointments/:id/attendance", appointmentHandler.Attendance)
			secured.PATCH("/me/appointments/:id/no-show", appointmentHandler.NoShow)
			secured.PATCH("/me/appointments/:id/complete", appointmentHandler.Complete)
			secured.POST("/me/appointments/:id/photos", uploadLimit, appointmentHandler.UploadPhoto)
			secured.POST("/me/appointments/:id/voucher", uploadLimit, paymentHandler.SubmitVoucher)
			secured.POST("/me/appointments/:id/loyalty", loyaltyHandler.Accrue)

			// ------------------------------
			// PAYMENTS
			// ------------------------------
			secured.PATCH("/me/payments/:id/approve", paymentHandler.Approve)
			secured.PATCH("/me/payments/:id/reject", paymentHandler.Reject)
			secured.GET("/me/payments/:id/gateway", paymentHandler.Gateway)

			// ------------------------------
			// REPORTS / AUDIT
			// ------------------------------
			secured.GET("/me/reports/commissions", reportHandler.Commissions)
			secured.GET("/me/reports/commissions.pdf", reportHandler.CommissionsPDF)

			secured.GET("/me/audit-logs", admins, auditLogsHandler.List)
		}
	}

	return auditDispatcher
}
