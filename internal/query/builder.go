package query

import (
	"strings"

	"github.com/meoying/shardorm/internal/model"
)

// Query 最终发给某个分片执行的语句
type Query struct {
	SQL  string
	Args []any
}

// Raw 直接使用调用者提供的语句
func Raw(sql string, args ...any) Query {
	return Query{SQL: sql, Args: args}
}

// Select SELECT * FROM `table` WHERE ...;
// orderByPK 为 true 的时候按照主键升序, 用于多个分片的结果归并
func Select(d *model.Descriptor, cond Condition, orderByPK bool) Query {
	var sb strings.Builder
	sb.WriteString("SELECT * FROM ")
	sb.WriteString(quote(d.TableName))
	where, args := cond.Build()
	sb.WriteString(where)
	if orderByPK {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(quote(d.PrimaryKey.Column))
	}
	sb.WriteByte(';')
	return Query{SQL: sb.String(), Args: args}
}

// Sum SELECT SUM(`column`) FROM `table` WHERE ...;
func Sum(d *model.Descriptor, column string, cond Condition) Query {
	var sb strings.Builder
	sb.WriteString("SELECT SUM(")
	sb.WriteString(quote(column))
	sb.WriteString(") FROM ")
	sb.WriteString(quote(d.TableName))
	where, args := cond.Build()
	sb.WriteString(where)
	sb.WriteByte(';')
	return Query{SQL: sb.String(), Args: args}
}

// Insert INSERT INTO `table`(`a`,`b`) VALUES(?,?);
func Insert(table string, columns []string) string {
	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(quote(table))
	sb.WriteByte('(')
	for i, c := range columns {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(quote(c))
	}
	sb.WriteString(") VALUES(")
	for i := range columns {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteByte('?')
	}
	sb.WriteString(");")
	return sb.String()
}
