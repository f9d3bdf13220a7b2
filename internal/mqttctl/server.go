package mqttctl

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/jonas-koeritz/imx219/internal/config"
	"github.com/jonas-koeritz/imx219/internal/logging"
)

const disconnectQuiesce = 250 // ms

type Server struct {
	client mqtt.Client
	prefix string
	qos    byte
	d      *Dispatcher
	log    *logging.Logger
}

// NewServer prepares a client for cfg.Broker. Nothing is sent before Start.
func NewServer(cfg config.MQTTConfig, c Controller, logger *logging.Logger) *Server {
	s := &Server{
		prefix: strings.TrimSuffix(cfg.TopicPrefix, "/"),
		qos:    cfg.QoS,
		d:      NewDispatcher(c),
		log:    logger,
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "imx219-" + uuid.NewString()
	}
	opts := mqtt.NewClientOptions().AddBroker(cfg.Broker).SetClientID(clientID)
	opts.SetKeepAlive(cfg.KeepAlive)
	opts.SetPingTimeout(time.Second)
	opts.SetAutoReconnect(true)
	opts.SetOnConnectHandler(s.onConnect)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		s.log.Warningf("mqtt connection lost: %v", err)
	})
	s.client = mqtt.NewClient(opts)
	return s
}

func (s *Server) CommandTopic() string { return s.prefix + "/cmd/+" }
func (s *Server) StateTopic() string   { return s.prefix + "/state" }
func (s *Server) ErrorTopic() string   { return s.prefix + "/error" }

// Start connects and subscribes. Subscriptions are renewed on reconnect.
func (s *Server) Start() error {
	if token := s.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to connect to mqtt broker: %w", token.Error())
	}
	return nil
}

func (s *Server) Stop() {
	s.client.Disconnect(disconnectQuiesce)
}

func (s *Server) onConnect(client mqtt.Client) {
	if token := client.Subscribe(s.CommandTopic(), s.qos, s.handle); token.Wait() && token.Error() != nil {
		s.log.Errorf("failed to subscribe %s: %v", s.CommandTopic(), token.Error())
		return
	}
	s.log.Infof("mqtt subscribed to %s", s.CommandTopic())
	s.PublishState()
}

func (s *Server) handle(_ mqtt.Client, msg mqtt.Message) {
	action := strings.TrimPrefix(msg.Topic(), s.prefix+"/cmd/")
	reply := s.d.Handle(action, msg.Payload())
	if reply.OK {
		s.log.Debugf("mqtt %s %s ok", reply.ID, action)
	} else {
		s.log.Warningf("mqtt %s %s: %s", reply.ID, action, reply.Error)
		s.publish(s.ErrorTopic(), reply)
	}
	s.publish(s.StateTopic(), reply)
}

// PublishState announces the current sensor state without a request.
func (s *Server) PublishState() {
	s.publish(s.StateTopic(), Reply{ID: uuid.NewString(), Action: "state", OK: true, State: s.d.c.State()})
}

func (s *Server) publish(topic string, v any) {
	msg, err := json.Marshal(v)
	if err != nil {
		s.log.Errorf("failed to encode %s message: %v", topic, err)
		return
	}
	if token := s.client.Publish(topic, s.qos, false, msg); token.Wait() && token.Error() != nil {
		s.log.Errorf("failed to publish %s: %v", topic, token.Error())
	}
}
