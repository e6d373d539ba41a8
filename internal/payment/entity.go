package payment

import (
	"errors"
)

// Customer 按照 id 分片
type Customer struct {
	ID   *int64 `shard:"primary_key,shard_key"`
	Name string `validate:"required,max=100"`
}

func (Customer) TableName() string {
	return "customer"
}

// Payment 按照发送方分片, 同一个客户发出的支付都在同一个分片上
type Payment struct {
	ID       *int64 `shard:"primary_key"`
	Amount   *int64
	Sender   *Customer `shard:"shard_key" validate:"-"`
	Receiver *Customer `validate:"-"`
}

func (Payment) TableName() string {
	return "payment"
}

var (
	errNoSender   = errors.New("支付缺少发送方")
	errNoReceiver = errors.New("支付缺少接收方")
)

func (p Payment) Validate() error {
	if p.Sender == nil || p.Sender.ID == nil {
		return errNoSender
	}
	if p.Receiver == nil || p.Receiver.ID == nil {
		return errNoReceiver
	}
	return nil
}
