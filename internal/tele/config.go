package tele

type Config struct { //nolint:maligned
	Enabled           bool   `hcl:"enable"`
	LogDebug          bool   `hcl:"log_debug"`
	ClientID          string `hcl:"client_id"`
	TopicPrefix       string `hcl:"topic_prefix"`
	KeepaliveSec      int    `hcl:"keepalive_sec"`
	MqttBroker        string `hcl:"mqtt_broker"`
	MqttLogDebug      bool   `hcl:"mqtt_log_debug"`
	MqttUsername      string `hcl:"mqtt_username"`
	MqttPassword      string `hcl:"mqtt_password"` // secret
	NetworkTimeoutSec int    `hcl:"network_timeout_sec"`
	QueueSize         int    `hcl:"queue_size"`
	TlsCaFile         string `hcl:"tls_ca_file"`
}

const defaultClientID = "linepanel"

func (c *Config) prefix() string {
	switch {
	case c.TopicPrefix != "":
		return c.TopicPrefix
	case c.ClientID != "":
		return c.ClientID
	}
	return defaultClientID
}
