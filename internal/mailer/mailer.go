package mailer

import (
	"sync"

	"bookhub/internal/metrics"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

// Message is one rendered email ready to send.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender performs the actual delivery. Implementations may block; only
// pool workers ever call Send.
type Sender interface {
	Send(m Message) error
}

// SMTPSender delivers over SMTP.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (s *SMTPSender) Send(m Message) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", m.To)
	msg.SetHeader("Subject", m.Subject)
	msg.SetBody("text/plain", m.Body)
	return s.dialer.DialAndSend(msg)
}

// Pool is the bounded background worker pool for email delivery.
// Enqueue never blocks: a full queue drops the message. Send failures
// are logged and never retried. Construct at startup, Close at
// shutdown after the HTTP server has stopped accepting requests.
type Pool struct {
	sender Sender
	jobs   chan Message
	wg     sync.WaitGroup
	log    zerolog.Logger
	once   sync.Once
}

const (
	DefaultWorkers   = 5
	DefaultQueueSize = 64
)

func NewPool(sender Sender, workers, queueSize int, log zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}

	p := &Pool{
		sender: sender,
		jobs:   make(chan Message, queueSize),
		log:    log.With().Str("component", "mailer").Logger(),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Enqueue submits a message to the pool. Returns false when the queue
// is full; the caller decides whether that is worth a log line.
func (p *Pool) Enqueue(m Message) bool {
	select {
	case p.jobs <- m:
		return true
	default:
		return false
	}
}

// Close drains the queue and waits for in-flight sends.
func (p *Pool) Close() {
	p.once.Do(func() {
		close(p.jobs)
	})
	p.wg.Wait()
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for m := range p.jobs {
		if err := p.sender.Send(m); err != nil {
			metrics.IncEmail("failed")
			p.log.Error().Err(err).Str("to", m.To).Str("subject", m.Subject).Msg("email send failed")
			continue
		}
		metrics.IncEmail("sent")
	}
}
