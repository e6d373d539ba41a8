package payment

import (
	"github.com/ecodeclub/ekit/slice"
)

type CustomerDTO struct {
	// ID 为 0 表示由服务端分配
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type PaymentDTO struct {
	ID         *int64 `json:"id,omitempty"`
	Amount     *int64 `json:"amount"`
	SenderID   *int64 `json:"senderId"`
	ReceiverID *int64 `json:"receiverId"`
}

func customerFromDTO(dto CustomerDTO) *Customer {
	c := &Customer{Name: dto.Name}
	if dto.ID != 0 {
		id := dto.ID
		c.ID = &id
	}
	return c
}

func customerToDTO(c *Customer) CustomerDTO {
	dto := CustomerDTO{Name: c.Name}
	if c.ID != nil {
		dto.ID = *c.ID
	}
	return dto
}

func customersToDTO(cs []*Customer) []CustomerDTO {
	return slice.Map(cs, func(idx int, src *Customer) CustomerDTO {
		return customerToDTO(src)
	})
}

func refOf(id *int64) *Customer {
	if id == nil {
		return nil
	}
	return &Customer{ID: id}
}

func paymentFromDTO(dto PaymentDTO) *Payment {
	return &Payment{
		ID:       dto.ID,
		Amount:   dto.Amount,
		Sender:   refOf(dto.SenderID),
		Receiver: refOf(dto.ReceiverID),
	}
}

func paymentToDTO(p *Payment) PaymentDTO {
	dto := PaymentDTO{ID: p.ID, Amount: p.Amount}
	if p.Sender != nil {
		dto.SenderID = p.Sender.ID
	}
	if p.Receiver != nil {
		dto.ReceiverID = p.Receiver.ID
	}
	return dto
}
