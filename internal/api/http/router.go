package http

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bloodbank-backend/internal/domain"
	"bloodbank-backend/internal/metrics"
	"bloodbank-backend/internal/service"
)

// Services bundles what the handlers call into.
type Services struct {
	Auth         service.AuthService
	User         service.UserService
	Inventory    service.InventoryService
	Donation     service.DonationService
	Request      service.RequestService
	Eligibility  service.EligibilityService
	Report       service.ReportService
	Notification service.NotificationService
}

type RouterOptions struct {
	Auth    *Authenticator
	Metrics *metrics.Metrics
	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
	// Health is probed by /healthz. Nil reports healthy.
	Health func(ctx context.Context) error
}

func NewRouter(svc Services, opts RouterOptions) *mux.Router {
	router := mux.NewRouter()
	router.Use(RequestLogger(opts.Metrics))

	router.HandleFunc("/healthz", healthz(opts.Health)).Methods(http.MethodGet)
	if opts.Gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	api := router.PathPrefix("/api").Subrouter()
	auth := opts.Auth
	admin := auth.Require(domain.RoleAdmin)

	authH := NewAuthHandler(svc.Auth)
	api.HandleFunc("/auth/register", authH.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", authH.Login).Methods(http.MethodPost)
	api.Handle("/auth/logout", auth.Require()(http.HandlerFunc(authH.Logout))).Methods(http.MethodPost)

	donorH := NewDonorHandler(svc.User, svc.Donation, svc.Eligibility)
	donor := api.PathPrefix("/donor").Subrouter()
	donor.Use(auth.Require(domain.RoleDonor))
	donor.HandleFunc("/profile", donorH.GetProfile).Methods(http.MethodGet)
	donor.HandleFunc("/profile", donorH.UpdateProfile).Methods(http.MethodPut)
	donor.HandleFunc("/eligibility", donorH.Eligibility).Methods(http.MethodGet)
	donor.HandleFunc("/schedule", donorH.Schedule).Methods(http.MethodPost)
	donor.HandleFunc("/history", donorH.History).Methods(http.MethodGet)

	recipientH := NewRecipientHandler(svc.User, svc.Request)
	recipient := api.PathPrefix("/recipient").Subrouter()
	recipient.Use(auth.Require(domain.RoleRecipient))
	recipient.HandleFunc("/profile", recipientH.GetProfile).Methods(http.MethodGet)
	recipient.HandleFunc("/profile", recipientH.UpdateProfile).Methods(http.MethodPut)
	recipient.HandleFunc("/requests", recipientH.CreateRequest).Methods(http.MethodPost)
	recipient.HandleFunc("/requests", recipientH.ListRequests).Methods(http.MethodGet)
	recipient.HandleFunc("/requests/{id}", recipientH.GetRequest).Methods(http.MethodGet)
	recipient.HandleFunc("/requests/{id}/cancel", recipientH.CancelRequest).Methods(http.MethodPut)

	// Inventory reads are public, writes are admin only. Fixed paths are
	// registered ahead of the {bloodType} pattern.
	inventoryH := NewInventoryHandler(svc.Inventory)
	api.HandleFunc("/inventory", inventoryH.List).Methods(http.MethodGet)
	api.HandleFunc("/inventory/search", inventoryH.Search).Methods(http.MethodGet)
	api.HandleFunc("/inventory/low-stock", inventoryH.LowStock).Methods(http.MethodGet)
	api.Handle("/inventory", admin(http.HandlerFunc(inventoryH.Set))).Methods(http.MethodPost)
	api.Handle("/inventory/add", admin(http.HandlerFunc(inventoryH.Add))).Methods(http.MethodPost)
	api.Handle("/inventory/remove", admin(http.HandlerFunc(inventoryH.Remove))).Methods(http.MethodPost)
	api.HandleFunc("/inventory/{bloodType}", inventoryH.Get).Methods(http.MethodGet)
	api.Handle("/inventory/{bloodType}", admin(http.HandlerFunc(inventoryH.Set))).Methods(http.MethodPut)

	adminH := NewAdminHandler(svc.User, svc.Donation, svc.Request, svc.Inventory, svc.Report, svc.Notification)
	adm := api.PathPrefix("/admin").Subrouter()
	adm.Use(admin)
	adm.HandleFunc("/dashboard", adminH.Dashboard).Methods(http.MethodGet)
	adm.HandleFunc("/stats", adminH.Dashboard).Methods(http.MethodGet)
	adm.HandleFunc("/recent-donations", adminH.RecentDonations).Methods(http.MethodGet)
	adm.HandleFunc("/recent-requests", adminH.RecentRequests).Methods(http.MethodGet)

	adm.HandleFunc("/users", adminH.ListUsers).Methods(http.MethodGet)
	adm.HandleFunc("/users/{id}", adminH.GetUser).Methods(http.MethodGet)
	adm.HandleFunc("/users/{id}", adminH.UpdateUser).Methods(http.MethodPut)
	adm.HandleFunc("/users/{id}", adminH.DeleteUser).Methods(http.MethodDelete)

	adm.HandleFunc("/donations", adminH.ListDonations).Methods(http.MethodGet)
	adm.HandleFunc("/donations/{id}/status", adminH.SetDonationStatus).Methods(http.MethodPut)
	adm.HandleFunc("/requests", adminH.ListRequests).Methods(http.MethodGet)
	adm.HandleFunc("/requests/{id}/status", adminH.SetRequestStatus).Methods(http.MethodPut)

	adm.HandleFunc("/reports/donations", adminH.DonationReport).Methods(http.MethodGet)
	adm.HandleFunc("/reports/donations/export", adminH.ExportDonationReport).Methods(http.MethodGet)
	adm.HandleFunc("/reports/requests", adminH.RequestReport).Methods(http.MethodGet)
	adm.HandleFunc("/reports/requests/export", adminH.ExportRequestReport).Methods(http.MethodGet)
	adm.HandleFunc("/reports/inventory", adminH.InventoryReport).Methods(http.MethodGet)
	adm.HandleFunc("/reports/active-donors", adminH.ActiveDonors).Methods(http.MethodGet)

	adm.HandleFunc("/notifications/send", adminH.SendNotification).Methods(http.MethodPost)
	adm.HandleFunc("/notifications", adminH.Notifications).Methods(http.MethodGet)
	adm.HandleFunc("/alerts/low-stock", adminH.LowStockAlerts).Methods(http.MethodGet)

	return router
}

func healthz(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
