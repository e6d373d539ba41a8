package payment

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/ecodeclub/ekit/slice"
	"github.com/meoying/shardorm"
)

type CustomerService struct {
	dao *CustomerDAO
}

func NewCustomerService(dao *CustomerDAO) *CustomerService {
	return &CustomerService{dao: dao}
}

func (s *CustomerService) SaveCustomer(ctx context.Context, dto CustomerDTO) (CustomerDTO, error) {
	c, err := s.dao.Save(ctx, customerFromDTO(dto))
	if err != nil {
		return CustomerDTO{}, err
	}
	return customerToDTO(c), nil
}

func (s *CustomerService) SaveAllCustomers(ctx context.Context, dtos []CustomerDTO) ([]CustomerDTO, error) {
	cs, err := s.dao.SaveAllInBatch(ctx, slice.Map(dtos, func(idx int, src CustomerDTO) *Customer {
		return customerFromDTO(src)
	}))
	if err != nil {
		return nil, err
	}
	return customersToDTO(cs), nil
}

func (s *CustomerService) GetAllCustomerIDs(ctx context.Context) ([]int64, error) {
	return s.dao.FindAllIDs(ctx)
}

func (s *CustomerService) GetAllCustomers(ctx context.Context) ([]CustomerDTO, error) {
	cs, err := s.dao.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return customersToDTO(cs), nil
}

func (s *CustomerService) GetCustomer(ctx context.Context, id int64) (CustomerDTO, error) {
	c, err := s.dao.FindOne(ctx, id)
	if err != nil {
		return CustomerDTO{}, err
	}
	return customerToDTO(c), nil
}

type PaymentService struct {
	dao       *PaymentDAO
	customers *CustomerService
	logger    *slog.Logger
}

func NewPaymentService(dao *PaymentDAO, customers *CustomerService, logger *slog.Logger) *PaymentService {
	return &PaymentService{dao: dao, customers: customers, logger: logger}
}

// SavePayments 所有的接收方都必须是已经存在的客户, 否则一条都不写入
func (s *PaymentService) SavePayments(ctx context.Context, dtos []PaymentDTO) ([]PaymentDTO, error) {
	if len(dtos) == 0 {
		return []PaymentDTO{}, nil
	}
	ids, err := s.customers.GetAllCustomerIDs(ctx)
	if err != nil {
		return nil, err
	}
	known := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		known[id] = struct{}{}
	}
	var invalid []string
	for _, dto := range dtos {
		if dto.ReceiverID == nil {
			invalid = append(invalid, "null")
			continue
		}
		if _, ok := known[*dto.ReceiverID]; !ok {
			invalid = append(invalid, strconv.FormatInt(*dto.ReceiverID, 10))
		}
	}
	if len(invalid) > 0 {
		slices.Sort(invalid)
		invalid = slices.Compact(invalid)
		s.logger.WarnContext(ctx, "接收方不存在", slog.Any("receivers", invalid))
		return nil, fmt.Errorf("%w: 接收方 id 不正确 [%s]", shardorm.ErrValidation, strings.Join(invalid, ","))
	}
	ps, err := s.dao.SaveAll(ctx, slice.Map(dtos, func(idx int, src PaymentDTO) *Payment {
		return paymentFromDTO(src)
	}))
	if err != nil {
		return nil, err
	}
	return slice.Map(ps, func(idx int, src *Payment) PaymentDTO {
		return paymentToDTO(src)
	}), nil
}

func (s *PaymentService) GetAmountBySenderID(ctx context.Context, senderID int64) (int64, error) {
	return s.dao.SumAmountBySenderID(ctx, senderID)
}
