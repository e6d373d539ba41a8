package validation

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/meoying/shardorm/internal/errs"
)

// Validatable 实体可以实现该接口, 在标签校验之后做额外的检查
type Validatable interface {
	Validate() error
}

// Validator 写入之前的校验.
// 先执行 validate 标签, 再执行实体自己的 Validate 方法
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	return &Validator{
		v: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (v *Validator) Validate(ctx context.Context, entity any) error {
	if entity == nil {
		return errs.NewValidationError("nil", errNilEntity)
	}
	typ := fmt.Sprintf("%T", entity)
	if err := v.v.StructCtx(ctx, entity); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			// 不是结构体, 交给后面的元数据解析报错
			return nil
		}
		return errs.NewValidationError(typ, err)
	}
	if val, ok := entity.(Validatable); ok {
		if err := val.Validate(); err != nil {
			return errs.NewValidationError(typ, err)
		}
	}
	return nil
}

// ValidateAll 遇到第一个失败就返回, 返回值中包含实体的下标
func (v *Validator) ValidateAll(ctx context.Context, entities []any) error {
	for i, e := range entities {
		if err := v.Validate(ctx, e); err != nil {
			return fmt.Errorf("第 %d 个实体: %w", i, err)
		}
	}
	return nil
}

var errNilEntity = errors.New("实体为 nil")

// FieldErrors 把校验失败的字段整理成 字段名 -> tag, 方便 HTTP 层返回
func FieldErrors(err error) map[string]string {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return nil
	}
	res := make(map[string]string, len(ves))
	for _, fe := range ves {
		res[fe.Field()] = fe.Tag()
	}
	return res
}
