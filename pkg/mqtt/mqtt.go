package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"

	"github.com/nordfrost-se/controller/pkg/status"
)

// CommandHandler receives every valid inbound command. It runs on paho's
// callback goroutine so it must not block.
type CommandHandler func(Command)

// Client wraps the broker connection with our topic layout:
// nordfrost/<id>/cmd inbound, nordfrost/<id>/status outbound.
type Client struct {
	client      paho.Client
	statusTopic string
	cmdTopic    string
	onCommand   CommandHandler
}

func New(broker, id string, onCommand CommandHandler) *Client {
	c := &Client{
		statusTopic: fmt.Sprintf("nordfrost/%s/status", id),
		cmdTopic:    fmt.Sprintf("nordfrost/%s/cmd", id),
		onCommand:   onCommand,
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(id).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(pc paho.Client) {
			token := pc.Subscribe(c.cmdTopic, 1, c.handleMessage)
			if token.WaitTimeout(5*time.Second) && token.Error() != nil {
				logrus.Errorf("subscribe %s: %s", c.cmdTopic, token.Error())
			}
		})

	c.client = paho.NewClient(opts)
	return c
}

// Connect blocks until the first connection attempt resolves. With connect
// retry enabled a timeout here only means the broker was not up yet, the
// client keeps trying in the background.
func (c *Client) Connect() error {
	token := c.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		logrus.Warn("broker connection pending, continuing with retry")
		return nil
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("connect to broker: %w", err)
	}
	return nil
}

func (c *Client) handleMessage(_ paho.Client, msg paho.Message) {
	cmd, err := ParseCommand(msg.Payload())
	if err != nil {
		logrus.Warnf("rejected command on %s: %s", msg.Topic(), err)
		return
	}
	if c.onCommand != nil {
		c.onCommand(cmd)
	}
}

// PublishStatus sends the telemetry snapshot as JSON, retained so late
// subscribers see the last known state, plus one retained value per key for
// consumers that subscribe to single measurements.
func (c *Client) PublishStatus(s status.Status) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal status: %w", err)
	}
	if err := c.publish(c.statusTopic, payload); err != nil {
		return err
	}
	for key, value := range keyValues(s) {
		if err := c.publish(c.statusTopic+"/"+key, []byte(value)); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) publish(topic string, payload []byte) error {
	token := c.client.Publish(topic, 0, true, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout on %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// keyValues flattens the snapshot for the per-key topics.
func keyValues(s status.Status) map[string]string {
	m := s.Map()
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = fmt.Sprint(v)
	}
	return out
}

func (c *Client) Close() {
	c.client.Disconnect(1000)
}
