package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/meoying/shardorm/internal/payment"
)

const (
	contentTypeJSON   = "application/json"
	readHeaderTimeout = time.Second * 5
)

var errBadRequest = errors.New("请求参数错误")

type CustomerService interface {
	SaveCustomer(ctx context.Context, dto payment.CustomerDTO) (payment.CustomerDTO, error)
	SaveAllCustomers(ctx context.Context, dtos []payment.CustomerDTO) ([]payment.CustomerDTO, error)
	GetAllCustomerIDs(ctx context.Context) ([]int64, error)
	GetAllCustomers(ctx context.Context) ([]payment.CustomerDTO, error)
	GetCustomer(ctx context.Context, id int64) (payment.CustomerDTO, error)
}

type PaymentService interface {
	SavePayments(ctx context.Context, dtos []payment.PaymentDTO) ([]payment.PaymentDTO, error)
	GetAmountBySenderID(ctx context.Context, senderID int64) (int64, error)
}

type Server struct {
	customers  CustomerService
	payments   PaymentService
	logger     *slog.Logger
	httpServer *http.Server
}

func NewServer(addr string, customers CustomerService, payments PaymentService, logger *slog.Logger) *Server {
	s := &Server{
		customers: customers,
		payments:  payments,
		logger:    logger,
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/customers", func(r chi.Router) {
		r.Post("/", s.handleSaveCustomer)
		r.Post("/batch", s.handleSaveCustomers)
		// 兼容旧的批量写入路径
		r.Post("/all", s.handleSaveCustomers)
		r.Get("/", s.handleGetCustomers)
		r.Get("/ids", s.handleGetCustomerIDs)
		r.Get("/{id}", s.handleGetCustomer)
	})
	r.Route("/payments", func(r chi.Router) {
		r.Post("/", s.handleSavePayments)
		r.Get("/amount", s.handleGetAmount)
	})
	return r
}

// Start 非阻塞, 监听失败会记录日志
func (s *Server) Start() {
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP 服务异常退出", slog.Any("err", err))
		}
	}()
	s.logger.Info("HTTP 服务已启动", slog.String("addr", s.httpServer.Addr))
}

func (s *Server) Stop(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("关闭 HTTP 服务失败: %w", err)
	}
	return nil
}

func (s *Server) handleSaveCustomer(w http.ResponseWriter, r *http.Request) {
	var dto payment.CustomerDTO
	if !s.decode(w, r, &dto) {
		return
	}
	res, err := s.customers.SaveCustomer(r.Context(), dto)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSaveCustomers(w http.ResponseWriter, r *http.Request) {
	var dtos []payment.CustomerDTO
	if !s.decode(w, r, &dtos) {
		return
	}
	res, err := s.customers.SaveAllCustomers(r.Context(), dtos)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGetCustomers(w http.ResponseWriter, r *http.Request) {
	res, err := s.customers.GetAllCustomers(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGetCustomerIDs(w http.ResponseWriter, r *http.Request) {
	res, err := s.customers.GetAllCustomerIDs(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: id: %w", errBadRequest, err))
		return
	}
	res, err := s.customers.GetCustomer(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSavePayments(w http.ResponseWriter, r *http.Request) {
	var dtos []payment.PaymentDTO
	if !s.decode(w, r, &dtos) {
		return
	}
	res, err := s.payments.SavePayments(r.Context(), dtos)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGetAmount(w http.ResponseWriter, r *http.Request) {
	senderID, err := strconv.ParseInt(r.URL.Query().Get("senderId"), 10, 64)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: senderId: %w", errBadRequest, err))
		return
	}
	amount, err := s.payments.GetAmountBySenderID(r.Context(), senderID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, AmountResponse{SenderID: senderID, Amount: amount})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %w", errBadRequest, err))
		return false
	}
	return true
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "处理请求失败",
			slog.String("path", r.URL.Path),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.Any("err", err))
	}
	s.writeJSON(w, status, newErrorResponse(status, err))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("响应编码失败", slog.Any("err", err))
	}
}
