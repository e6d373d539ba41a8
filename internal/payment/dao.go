package payment

import (
	"context"
	"fmt"

	"github.com/meoying/shardorm"
)

type CustomerDAO struct {
	db *shardorm.DB
}

func NewCustomerDAO(db *shardorm.DB) *CustomerDAO {
	return &CustomerDAO{db: db}
}

// Save 没有 id 的客户会先分配 id
func (dao *CustomerDAO) Save(ctx context.Context, c *Customer) (*Customer, error) {
	if _, err := shardorm.Save(ctx, dao.db, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (dao *CustomerDAO) SaveAllInBatch(ctx context.Context, cs []*Customer) ([]*Customer, error) {
	if _, err := shardorm.SaveAllInBatch(ctx, dao.db, cs); err != nil {
		return nil, err
	}
	return cs, nil
}

// FindAllIDs 所有分片上的客户 id, 不保证顺序
func (dao *CustomerDAO) FindAllIDs(ctx context.Context) ([]int64, error) {
	rows, err := dao.db.Query(ctx, "SELECT `id` FROM `customer`;")
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		var id int64
		if err = shardorm.ScanValue(&id, row["id"]); err != nil {
			return nil, fmt.Errorf("%w: customer.id: %w", shardorm.ErrMapping, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// MaxID 没有客户的时候返回 0
func (dao *CustomerDAO) MaxID(ctx context.Context) (int64, error) {
	ids, err := dao.FindAllIDs(ctx)
	if err != nil {
		return 0, err
	}
	var res int64
	for _, id := range ids {
		res = max(res, id)
	}
	return res, nil
}

// FindAll 按照 id 升序
func (dao *CustomerDAO) FindAll(ctx context.Context) ([]*Customer, error) {
	return shardorm.Find[Customer](dao.db).All(ctx)
}

func (dao *CustomerDAO) FindOne(ctx context.Context, id int64) (*Customer, error) {
	return shardorm.Find[Customer](dao.db).Where().Eq("id", id).One(ctx)
}

type PaymentDAO struct {
	db *shardorm.DB
}

func NewPaymentDAO(db *shardorm.DB) *PaymentDAO {
	return &PaymentDAO{db: db}
}

// SaveAll 写入之后 id 会回写到每个 Payment 上
func (dao *PaymentDAO) SaveAll(ctx context.Context, ps []*Payment) ([]*Payment, error) {
	if _, err := shardorm.SaveAllInBatch(ctx, dao.db, ps); err != nil {
		return nil, err
	}
	return ps, nil
}

// SumAmountBySenderID 没有支付记录的时候返回 0
func (dao *PaymentDAO) SumAmountBySenderID(ctx context.Context, senderID int64) (int64, error) {
	var sum int64
	err := shardorm.Sum[Payment](dao.db, "amount").Where().Eq("sender_id", senderID).Exec(ctx, &sum)
	return sum, err
}
