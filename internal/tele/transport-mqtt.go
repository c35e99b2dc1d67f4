package tele

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io/ioutil"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/juju/errors"
	"github.com/temoto/alive/v2"
	"github.com/temoto/linepanel/helpers"
	"github.com/temoto/linepanel/log2"
)

const DefaultNetworkTimeout = 30 * time.Second

type transportMqtt struct {
	log       *log2.Log
	onCommand func([]byte) bool
	m         mqtt.Client
	mopt      *mqtt.ClientOptions
	alive     *alive.Alive
	timeout   time.Duration
	backoff   helpers.Backoff

	topicState    string
	topicMessage  string
	topicCommand  string
	topicResponse string
	topicError    string
}

func (self *transportMqtt) Init(ctx context.Context, log *log2.Log, teleConfig Config, onCommand CommandCallback, willPayload []byte) error {
	self.log = log
	mqttLog := log.Clone(log2.LDebug)
	mqttLog.SetPrefix("tele.mqtt: ")
	mqtt.CRITICAL = mqttLog
	mqtt.ERROR = mqttLog
	mqtt.WARN = mqttLog
	if teleConfig.MqttLogDebug {
		mqtt.DEBUG = mqttLog
	}
	if teleConfig.MqttBroker == "" {
		return errors.NotValidf("tele mqtt_broker=empty")
	}

	clientID := teleConfig.ClientID
	if clientID == "" {
		clientID = defaultClientID
	}
	prefix := teleConfig.prefix()
	self.topicState = prefix + "/state"
	self.topicMessage = prefix + "/message"
	self.topicCommand = prefix + "/command"
	self.topicResponse = prefix + "/response"
	self.topicError = prefix + "/error"
	self.onCommand = func(payload []byte) bool { return onCommand(ctx, payload) }
	self.alive = alive.NewAlive()

	networkTimeout := helpers.IntSecondDefault(teleConfig.NetworkTimeoutSec, DefaultNetworkTimeout)
	if networkTimeout < 1*time.Second {
		networkTimeout = 1 * time.Second
	}
	self.timeout = networkTimeout
	connectTimeout := networkTimeout * 3
	self.backoff.Min, self.backoff.Max, self.backoff.K = time.Second, connectTimeout, 2
	keepaliveTimeout := helpers.IntSecondDefault(teleConfig.KeepaliveSec, networkTimeout/2)

	defaultHandler := func(_ mqtt.Client, msg mqtt.Message) {
		self.log.Errorf("tele unexpected mqtt message topic=%s", msg.Topic())
	}

	tlsconf := new(tls.Config)
	if teleConfig.TlsCaFile != "" {
		cabytes, err := ioutil.ReadFile(teleConfig.TlsCaFile)
		if err != nil {
			return errors.Annotatef(err, "tele tls_ca_file=%s", teleConfig.TlsCaFile)
		}
		tlsconf.RootCAs = x509.NewCertPool()
		if !tlsconf.RootCAs.AppendCertsFromPEM(cabytes) {
			return errors.NotValidf("tele tls_ca_file=%s", teleConfig.TlsCaFile)
		}
	}
	self.mopt = mqtt.NewClientOptions().
		AddBroker(teleConfig.MqttBroker).
		SetAutoReconnect(true).
		SetBinaryWill(self.topicState, willPayload, 1, true).
		SetCleanSession(true).
		SetClientID(clientID).
		SetConnectTimeout(connectTimeout).
		SetDefaultPublishHandler(defaultHandler).
		SetKeepAlive(keepaliveTimeout).
		SetMaxReconnectInterval(connectTimeout).
		SetOnConnectHandler(func(mqtt.Client) { go self.subscribe() }).
		SetOrderMatters(false).
		SetPingTimeout(networkTimeout).
		SetTLSConfig(tlsconf).
		SetWriteTimeout(networkTimeout)
	if teleConfig.MqttUsername != "" {
		self.mopt.SetUsername(teleConfig.MqttUsername).SetPassword(teleConfig.MqttPassword)
	}
	self.m = mqtt.NewClient(self.mopt)

	go self.connect()
	return nil
}

func (self *transportMqtt) Close() {
	self.alive.Stop()
	self.m.Disconnect(uint(self.timeout / time.Millisecond))
}

func (self *transportMqtt) SendState(payload []byte) bool {
	return self.publish(self.topicState, true, payload)
}

func (self *transportMqtt) SendMessage(payload []byte) bool {
	return self.publish(self.topicMessage, false, payload)
}

func (self *transportMqtt) SendCommandResponse(payload []byte) bool {
	return self.publish(self.topicResponse, false, payload)
}

func (self *transportMqtt) SendError(payload []byte) bool {
	return self.publish(self.topicError, false, payload)
}

func (self *transportMqtt) publish(topic string, retain bool, payload []byte) bool {
	if !self.m.IsConnected() {
		return false
	}
	t := self.m.Publish(topic, 1, retain, payload)
	return self.tokenWait(t, "publish "+topic) == nil
}

// connect retries with backoff until success or Close
func (self *transportMqtt) connect() {
	for self.alive.IsRunning() {
		t := self.m.Connect()
		err := self.tokenWait(t, "connect")
		delay := self.backoff.DelayAfter(err == nil)
		if err == nil {
			return // success path
		}
		self.log.Debugf("tele connect retry after=%v", delay)
		select {
		case <-self.alive.StopChan():
		case <-time.After(delay):
		}
	}
}

// subscribe on every (re)connect, clean session forgets subscriptions
func (self *transportMqtt) subscribe() {
	for self.alive.IsRunning() && self.m.IsConnected() {
		t := self.m.Subscribe(self.topicCommand, 1, self.mqttSubCommand)
		if self.tokenWait(t, "subscribe "+self.topicCommand) == nil {
			self.log.Debugf("tele subscribed topic=%s", self.topicCommand)
			return // success path
		}
		select {
		case <-self.alive.StopChan():
		case <-time.After(time.Second):
		}
	}
}

func (self *transportMqtt) mqttSubCommand(_ mqtt.Client, msg mqtt.Message) {
	if self.onCommand(msg.Payload()) {
		msg.Ack()
	}
}

func (self *transportMqtt) tokenWait(t mqtt.Token, tag string) error {
	if !t.WaitTimeout(self.timeout * 3) {
		err := fmt.Errorf("%s timeout", tag)
		self.log.Errorf("tele: MQTT %v", err)
		return err
	}
	if err := t.Error(); err != nil {
		err = errors.Annotate(err, tag)
		self.log.Errorf("tele: MQTT %v", err)
		return err
	}
	return nil
}
