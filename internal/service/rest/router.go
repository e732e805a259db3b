package rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
	"github.com/vladislavdragonenkov/ecom/internal/service/catalog"
	"github.com/vladislavdragonenkov/ecom/internal/service/order"
	"github.com/vladislavdragonenkov/ecom/internal/service/user"
)

// Handler связывает REST API с доменными сервисами.
type Handler struct {
	orders  *order.Service
	catalog *catalog.Service
	users   *user.Service
	idem    domain.IdempotencyRepository
	logger  *log.Entry
}

// NewHandler создаёт REST handler. idem может быть nil: тогда заголовок
// Idempotency-Key игнорируется.
func NewHandler(
	orders *order.Service,
	catalogSvc *catalog.Service,
	users *user.Service,
	idem domain.IdempotencyRepository,
	logger *log.Entry,
) *Handler {
	if logger == nil {
		logger = log.New().WithField("component", "rest")
	}
	return &Handler{
		orders:  orders,
		catalog: catalogSvc,
		users:   users,
		idem:    idem,
		logger:  logger,
	}
}

// Router собирает все маршруты API под /api/v1.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.Post("/", h.withIdempotency(h.createOrder))
			r.Get("/", h.listOrders)
			r.Get("/statistics", h.orderStatistics)
			r.Get("/{id}", h.getOrder)
			r.Put("/{id}/status", h.updateOrderStatus)
			r.Delete("/{id}", h.deleteOrder)
		})

		r.Route("/products", func(r chi.Router) {
			r.Post("/", h.createProduct)
			r.Get("/", h.listProducts)
			r.Get("/featured", h.listFeaturedProducts)
			r.Get("/{id}", h.getProduct)
			r.Put("/{id}", h.updateProduct)
			r.Delete("/{id}", h.deleteProduct)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Post("/", h.createCategory)
			r.Get("/", h.listCategories)
			r.Get("/{id}", h.getCategory)
			r.Put("/{id}", h.updateCategory)
			r.Delete("/{id}", h.deleteCategory)
		})

		r.Route("/users", func(r chi.Router) {
			r.Post("/register", h.registerUser)
			r.Get("/", h.listUsers)
			r.Get("/{id}", h.getUser)
			r.Delete("/{id}", h.deleteUser)
		})
	})

	return r
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(wrapped, r)

		h.logger.WithFields(log.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     wrapped.Status(),
			"duration":   time.Since(start).String(),
			"request_id": middleware.GetReqID(r.Context()),
		}).Info("http request")
	})
}
