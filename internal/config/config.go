package config

import (
	"time"

	"github.com/blues/cfsync/internal/logger"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Chain    ChainConfig    `mapstructure:"chain"`
	Sync     SyncConfig     `mapstructure:"sync"`
	Confirm  ConfirmConfig  `mapstructure:"confirm"`
	Task     TaskConfig     `mapstructure:"task"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// ChainConfig 链配置
type ChainConfig struct {
	RpcUrl       string `mapstructure:"rpc_url"`       // RPC节点URL
	ContractAddr string `mapstructure:"contract_addr"` // 众筹合约地址
	StartBlock   int64  `mapstructure:"start_block"`   // 合约部署区块号
}

// SyncConfig 对账调度配置
// 重试参数为可调配置，不做硬编码
type SyncConfig struct {
	Interval       int `mapstructure:"interval"`         // 轮询间隔（秒）
	RetryBaseDelay int `mapstructure:"retry_base_delay"` // 周期重试基础退避（秒），逐次翻倍
	RetryMaxCount  int `mapstructure:"retry_max_count"`  // 单周期最大重试次数
}

// PollInterval 轮询间隔
func (s SyncConfig) PollInterval() time.Duration {
	return time.Duration(s.Interval) * time.Second
}

// BaseDelay 重试基础退避
func (s SyncConfig) BaseDelay() time.Duration {
	return time.Duration(s.RetryBaseDelay) * time.Second
}

// ConfirmConfig 交易确认轮询配置
type ConfirmConfig struct {
	Interval    int `mapstructure:"interval"`     // 轮询间隔（秒），固定间隔
	MaxAttempts int `mapstructure:"max_attempts"` // 默认最大轮询次数
}

// PollInterval 轮询间隔
func (c ConfirmConfig) PollInterval() time.Duration {
	return time.Duration(c.Interval) * time.Second
}

type TaskConfig struct {
	Interval int `mapstructure:"interval"` // 项目状态重估间隔（秒）
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // 日志级别: debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // 输出目标: stdout, stderr, file
	File   string `mapstructure:"file"`   // 日志文件路径（当output为file时使用）
}

// GetLevel 实现 logger.LogConfig 接口
func (l LogConfig) GetLevel() string {
	return l.Level
}

// GetOutput 实现 logger.LogConfig 接口
func (l LogConfig) GetOutput() string {
	return l.Output
}

// GetFile 实现 logger.LogConfig 接口
func (l LogConfig) GetFile() string {
	return l.File
}

func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/cfsync")

	// 设置默认值
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.dbname", "crowdfunding")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("chain.start_block", 0)
	viper.SetDefault("sync.interval", 60)
	viper.SetDefault("sync.retry_base_delay", 5)
	viper.SetDefault("sync.retry_max_count", 5)
	viper.SetDefault("confirm.interval", 3)
	viper.SetDefault("confirm.max_attempts", 20)
	viper.SetDefault("task.interval", 60)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.file", "logs/app.log")

	// 自动读取环境变量
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logger.Warn("Warning: Could not read config file: %v", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		logger.Fatal("Unable to decode config into struct: %v", err)
	}

	return &config
}
