package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/meoying/shardorm"
	"github.com/meoying/shardorm/config"
	"github.com/meoying/shardorm/internal/payment"
	"github.com/meoying/shardorm/internal/web"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfile := pflag.String("config", "config/config.yaml", "配置文件路径")
	initSchema := pflag.Bool("init-schema", true, "启动时在每个分片上建表")
	pflag.Parse()

	cfg, err := loadConfig(*cfile)
	if err != nil {
		panic(fmt.Errorf("初始化读取配置文件失败 %w", err))
	}
	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	if err = run(cfg, *initSchema, logger); err != nil {
		logger.Error("服务异常退出", slog.Any("err", err))
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	cfg, err := config.Decode(func(cfg any) error {
		if err := v.Unmarshal(cfg); err != nil {
			return fmt.Errorf("解析配置文件失败 %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg config.Log) *slog.Logger {
	var level slog.Level
	// Validate 已经检查过取值
	_ = level.UnmarshalText([]byte(cfg.Level))
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func run(cfg *config.Config, initSchema bool, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := shardorm.Open(*cfg, shardorm.WithLogger(logger))
	if err != nil {
		return err
	}
	defer func() {
		if er := db.Close(); er != nil {
			logger.Error("关闭分片失败", slog.Any("err", er))
		}
	}()

	if initSchema {
		drivers := make([]string, 0, len(cfg.Shards))
		for _, s := range cfg.Shards {
			drivers = append(drivers, s.Driver)
		}
		if err = payment.CreateSchema(ctx, db, drivers); err != nil {
			return err
		}
	}

	customerDAO := payment.NewCustomerDAO(db)
	// 重启之后不能分配已经存在的客户 id
	maxID, err := customerDAO.MaxID(ctx)
	if err != nil {
		return err
	}
	db.AdvanceKeys(maxID)

	customers := payment.NewCustomerService(customerDAO)
	payments := payment.NewPaymentService(payment.NewPaymentDAO(db), customers, logger)
	server := web.NewServer(cfg.HTTP.Addr, customers, payments, logger)
	server.Start()

	<-ctx.Done()
	logger.Info("收到退出信号, 开始关闭")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Stop(shutdownCtx)
}
