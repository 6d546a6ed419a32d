package ingest

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/kirsrus/factorymon/model"
	"github.com/kirsrus/factorymon/pkg/logger"
	"github.com/kirsrus/factorymon/pkg/validator"
	"github.com/kirsrus/factorymon/service"

	"github.com/eclipse/paho.golang/paho"
	"github.com/google/uuid"
	"github.com/juju/errors"
	"github.com/sirupsen/logrus"
)

const (
	MaximumResultChan = 100
	ReconnectTimeout  = 5 * time.Second
	DefaultPort       = "1883"
	KeepAlive         = 30
	clientIDPrefix    = "factorymon-"
)

// Тип текущего состояния подключения к брокеру
type connectType int

const (
	connectUnknown = iota
	connectSuccess
	connectFailed
)

// Mqtt приём показаний станков через MQTT-брокер. Инициируется через NewMqtt.
// Постоянно держит подключение, пока не завершён контекст.
type Mqtt struct {
	ctx              context.Context
	log              *logrus.Entry
	address          string
	topic            string
	clientID         string
	username         string
	password         string
	qos              byte
	reconnectTimeout time.Duration
	// Канал передачи результата
	resultChan    chan model.ReadingInput
	connectedFlag connectType
}

// ConfigMqtt конфигурация Mqtt
type ConfigMqtt struct {
	Log *logrus.Logger
	// Адрес брокера вида tcp://host:port
	Broker string `conform:"trim" validate:"required,mqtt"`
	// Фильтр топиков, например factory/+/parameters
	Topic    string `conform:"trim" validate:"required"`
	ClientID string `conform:"trim"`
	Username string
	Password string
	QoS      uint `validate:"lte=2"`

	ReconnectTimeout time.Duration
	// Размер буфера принятых показаний
	Capacity uint
}

// NewMqtt конструктор Mqtt. Подключение к брокеру выполняется в фоне
func NewMqtt(ctx context.Context, config *ConfigMqtt) (service.IngestSvc, error) {
	if config == nil {
		return nil, errors.New("не задана конфигурация config")
	} else if err := validator.Get().ValidateWithConform(config); err != nil {
		return nil, errors.NewNotValid(err, "ошибка в конфигурации MQTT: "+validator.Describe(err))
	}

	broker, err := url.Parse(config.Broker)
	if err != nil {
		return nil, errors.Annotate(err, "некорректный адрес брокера")
	}
	address := broker.Host
	if broker.Port() == "" {
		address = net.JoinHostPort(broker.Hostname(), DefaultPort)
	}

	res := newMqtt(ctx, config)
	res.address = address
	if res.clientID == "" {
		res.clientID = clientIDPrefix + uuid.New().String()
	}
	res.log = res.log.WithField("client", res.clientID)

	// Запускаем бесконечный цикл переподключения к брокеру
	go res.loop()

	return res, nil
}

// Заполнение структуры без подключения к брокеру
func newMqtt(ctx context.Context, config *ConfigMqtt) *Mqtt {
	if config.Log == nil {
		config.Log = logger.Discard()
	}
	res := &Mqtt{
		ctx: ctx,
		log: config.Log.WithFields(map[string]interface{}{
			"module":  "mqtt",
			"scope":   "service",
			"address": config.Broker,
			"topic":   config.Topic,
		}),
		topic:            config.Topic,
		clientID:         config.ClientID,
		username:         config.Username,
		password:         config.Password,
		qos:              byte(config.QoS),
		reconnectTimeout: ReconnectTimeout,
		resultChan:       make(chan model.ReadingInput, MaximumResultChan),
		connectedFlag:    connectUnknown,
	}
	if config.ReconnectTimeout != 0 {
		res.reconnectTimeout = config.ReconnectTimeout
	}
	if config.Capacity != 0 {
		res.resultChan = make(chan model.ReadingInput, config.Capacity)
	}
	return res
}

// Бесконечный цикл подключения к брокеру. При завершении работы через context.Cancel просто
// завершаем его обработку
func (m *Mqtt) loop() {
	m.log.Info("старт работы модуля")

	for {
		select {
		case <-m.ctx.Done():
			m.log.Info("завершение работы модуля")
			return
		default:
		}

		err := m.connect()

		if err != nil && errors.Cause(err) != context.Canceled {
			select {
			case <-m.ctx.Done():
			case <-time.After(m.reconnectTimeout):
			}
		}
	}
}

// Подключение к брокеру и подписка на топик. Возвращает управление при потере соединения
func (m *Mqtt) connect() error {
	var d net.Dialer
	conn, err := d.DialContext(m.ctx, "tcp", m.address)
	if err != nil {
		m.connectFailed(err)
		return errors.Trace(err)
	}
	defer func() { _ = conn.Close() }()

	done := make(chan error, 2)
	lost := func(err error) {
		select {
		case done <- err:
		default:
		}
	}

	client := paho.NewClient(paho.ClientConfig{
		ClientID: m.clientID,
		Conn:     conn,
		OnPublishReceived: []func(paho.PublishReceived) (bool, error){
			func(pr paho.PublishReceived) (bool, error) {
				m.handlePayload(pr.Packet.Topic, pr.Packet.Payload)
				return true, nil
			},
		},
		OnClientError: func(err error) {
			lost(errors.Annotate(err, "ошибка клиента MQTT"))
		},
		OnServerDisconnect: func(d *paho.Disconnect) {
			lost(errors.Errorf("брокер разорвал соединение, код %d", d.ReasonCode))
		},
	})

	cp := &paho.Connect{
		ClientID:   m.clientID,
		KeepAlive:  KeepAlive,
		CleanStart: true,
	}
	if m.username != "" {
		cp.Username = m.username
		cp.UsernameFlag = true
	}
	if m.password != "" {
		cp.Password = []byte(m.password)
		cp.PasswordFlag = true
	}
	if _, err = client.Connect(m.ctx, cp); err != nil {
		m.connectFailed(err)
		return errors.Trace(err)
	}
	defer func() { _ = client.Disconnect(&paho.Disconnect{ReasonCode: 0}) }()

	_, err = client.Subscribe(m.ctx, &paho.Subscribe{
		Subscriptions: []paho.SubscribeOptions{{Topic: m.topic, QoS: m.qos}},
	})
	if err != nil {
		m.connectFailed(err)
		return errors.Annotate(err, "ошибка подписки")
	}

	if m.connectedFlag == connectUnknown || m.connectedFlag == connectFailed {
		m.log.Infof("подключение установлено")
		m.connectedFlag = connectSuccess
	}

	select {
	case <-m.ctx.Done():
		return m.ctx.Err()
	case err := <-done:
		m.log.Warnf("соединение потеряно: %v", err)
		m.connectedFlag = connectFailed
		return err
	}
}

// Ошибка подключения пишется в лог только при смене состояния
func (m *Mqtt) connectFailed(err error) {
	if m.connectedFlag == connectUnknown || m.connectedFlag == connectSuccess {
		m.log.Warnf("ошибка подключения: %v", err)
	}
	m.connectedFlag = connectFailed
}

// Разбор полученного сообщения. Некорректные сообщения пропускаются, при заполненном
// канале ожидает его освобождения
func (m *Mqtt) handlePayload(topic string, payload []byte) {
	input, err := model.ParseReadingInput(payload)
	if err != nil {
		m.log.Warnf("из топика %s пришёл некорректный json \"%s\": %v", topic, string(payload), err)
		return
	}

	// Блокируемся до освобождения канала: подтверждение брокеру уйдёт только после передачи
	select {
	case m.resultChan <- *input:
		m.log.Debugf("принято показание из топика %s", topic)
	case <-m.ctx.Done():
		m.log.Debugf("показание из топика %s не передано, завершение работы", topic)
	}
}

// EmmitReading ожидает показание от брокера и возвращает его.
// В случае штатного завершения работы возвращается ошибка context.Canceled
func (m *Mqtt) EmmitReading() (*model.ReadingInput, error) {
	select {
	case result := <-m.resultChan:
		return &result, nil
	case <-m.ctx.Done():
		return nil, m.ctx.Err()
	}
}

// String описание подключения для лога
func (m *Mqtt) String() string {
	return fmt.Sprintf("mqtt://%s/%s", m.address, m.topic)
}
