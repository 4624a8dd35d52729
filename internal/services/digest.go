package services

import (
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/donelist/backend/internal/config"
)

// Digest sends one templated summary email per day to a fixed recipient.
// Delivery failures are logged and otherwise ignored.
type Digest struct {
	cfg    config.DigestConfig
	send   func(addr, from string, to []string, msg []byte) error
	cron   *cron.Cron
	logger *zap.Logger
}

func NewDigest(cfg config.DigestConfig, logger *zap.Logger) *Digest {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Digest{
		cfg:    cfg,
		logger: logger,
		cron:   cron.New(cron.WithLocation(time.UTC)),
		send: func(addr, from string, to []string, msg []byte) error {
			return smtp.SendMail(addr, nil, from, to, msg)
		},
	}

	spec := fmt.Sprintf("%d %d * * *", cfg.MinuteUTC, cfg.HourUTC)
	if _, err := d.cron.AddFunc(spec, d.Run); err != nil {
		logger.Error("invalid digest schedule",
			zap.Int("hour_utc", cfg.HourUTC), zap.Int("minute_utc", cfg.MinuteUTC), zap.Error(err))
	}

	return d
}

func (d *Digest) Start() {
	if d == nil || !d.cfg.Enabled || d.cfg.Recipient == "" {
		return
	}
	d.cron.Start()
	d.logger.Info("daily digest scheduled",
		zap.Int("hour_utc", d.cfg.HourUTC), zap.Int("minute_utc", d.cfg.MinuteUTC))
}

func (d *Digest) Stop() {
	if d == nil {
		return
	}
	<-d.cron.Stop().Done()
}

// Run sends the digest email once.
func (d *Digest) Run() {
	msg := d.compose()
	if err := d.send(d.cfg.SMTPAddr, d.cfg.From, []string{d.cfg.Recipient}, msg); err != nil {
		d.logger.Warn("digest email delivery failed", zap.Error(err))
		return
	}
	d.logger.Info("digest email sent", zap.String("to", d.cfg.Recipient))
}

func (d *Digest) compose() []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", d.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", d.cfg.Recipient)
	b.WriteString("Subject: Your daily task summary\r\n")
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString("<p>Your tasks are waiting. Have a look at today's list.</p>\r\n")
	return []byte(b.String())
}
