package events

import (
	"go.uber.org/zap"
)

// ZapSink logs every notification as a structured entry.
type ZapSink struct {
	logger *zap.Logger
}

func NewZapSink(logger *zap.Logger) *ZapSink {
	return &ZapSink{logger: logger}
}

func (s *ZapSink) Emit(rec Record) {
	fields := []zap.Field{
		zap.String("pool", rec.Pool),
		zap.String("amount0", rec.Amount0),
		zap.String("amount1", rec.Amount1),
	}
	if rec.Sender != "" {
		fields = append(fields, zap.String("sender", rec.Sender))
	}
	if rec.Owner != "" {
		fields = append(fields, zap.String("owner", rec.Owner))
	}
	if rec.Recipient != "" {
		fields = append(fields, zap.String("recipient", rec.Recipient))
	}
	if rec.Liquidity != "" {
		fields = append(fields, zap.String("liquidity", rec.Liquidity))
	}
	if rec.SqrtPriceX96 != "" {
		fields = append(fields,
			zap.String("sqrt_price_x96", rec.SqrtPriceX96),
			zap.Int("tick", rec.Tick),
			zap.String("pool_liquidity", rec.PoolLiq),
		)
	}
	s.logger.Info(string(rec.Type), fields...)
}
