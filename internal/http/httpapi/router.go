package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"bizportal/internal/domain"
	"bizportal/internal/http/handlers"
	"bizportal/internal/infra"
	mw "bizportal/internal/middleware"
)

// NewRouter wires the REST API under /api/v1.0 and the SPA fallback for
// everything else.
func NewRouter(app *handlers.App, cfg *infra.Config, sql infra.SQLExecutor) http.Handler {
	r := chi.NewRouter()
	r.Use(
		chimw.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		chimw.Logger,
		mw.CORS(nil),
	)

	r.Get("/v1/healthz", app.Health)

	r.Route("/api/v1.0", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte("API is running"))
		})

		r.Route("/auth", func(r chi.Router) {
			r.Use(mw.RateLimit(cfg.AuthRatePerMin, time.Minute))
			r.Post("/signup", app.Signup)
			r.Post("/login", app.Login)
		})

		r.Route("/user", func(r chi.Router) {
			// Public pricing page data.
			r.Get("/getDefaultMembershipsPlans", app.MembershipPlans)

			r.Group(func(r chi.Router) {
				r.Use(mw.Protect(cfg.JWTSecret, sql))
				r.Get("/dashboard", app.Dashboard)
				r.Post("/update-content-progress", app.UpdateContentProgress)
				r.Get("/study-materials", app.StudyMaterials)
				r.Post("/assignMembership/{membershipId}", app.AssignSelfMembership)
				r.Get("/getMembershipsPlans", app.MembershipPlans)
				r.Get("/allMemberships", app.AllMemberships)
				r.Get("/getAllUserDetails", app.MyDetails)
				r.Post("/createEnquiry", app.CreateEnquiry)
				r.Post("/create", app.CreateReferral)
				r.Get("/my-referrals", app.MyReferrals)
				r.Post("/request-content", app.CreateContentRequest)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(mw.Protect(cfg.JWTSecret, sql))
			r.Use(mw.RequireRoles(domain.UserRoleAdmin))

			r.Post("/service", app.CreateService)
			r.Patch("/service/{id}", app.UpdateService)
			r.Get("/services", app.ListServices)

			r.Post("/membership", app.CreateMembership)
			r.Get("/memberships", app.ListMemberships)

			r.Post("/assign-membership/{userId}", app.AdminAssignMembership)
			r.Get("/users", app.ListUsers)

			r.Post("/upload-service-content", app.UploadServiceContent)
			r.Post("/edit-membership", app.SaveBenefitMatrix)

			r.Get("/all", app.ListEnquiries)
			r.Delete("/delete/{id}", app.DeleteEnquiry)

			r.Get("/allRefral", app.ListReferrals)
			r.Put("/update-status/{id}", app.UpdateReferralStatus)

			r.Get("/content-requests", app.ListContentRequests)
		})
	})

	// Uploads stored on the local filesystem are addressed as
	// STORAGE_BASE_URL/<key>, which defaults to /static/<key> on this host.
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StorageBasePath))))

	r.NotFound(handlers.SPA(cfg.StaticDir))

	return r
}
