package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Storage  StorageConfig  `yaml:"storage"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Booking  BookingConfig  `yaml:"booking"`
	Admin    AdminConfig    `yaml:"admin"`
	Worker   WorkerConfig   `yaml:"worker"`
	Catalog  CatalogConfig  `yaml:"catalog"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
}

// StorageConfig selects the appointment store driver: postgres, redis
// (whole collection as a JSON array under one key) or memory.
type StorageConfig struct {
	Driver          string `yaml:"driver"`
	AppointmentsKey string `yaml:"appointments_key"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	AppointmentsTopic  string   `yaml:"appointments_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type BookingConfig struct {
	SlotCapacity             int      `yaml:"slot_capacity"`
	Slots                    []string `yaml:"slots"`
	AvailabilityCacheSeconds int      `yaml:"availability_cache_seconds"`
}

type AdminConfig struct {
	Password          string `yaml:"password"`
	JWTSecret         string `yaml:"jwt_secret"`
	SessionTTLMinutes int    `yaml:"session_ttl_minutes"`
}

type WorkerConfig struct {
	OccupancySweepMinutes int `yaml:"occupancy_sweep_minutes"`
	OccupancyDays         int `yaml:"occupancy_days"`
}

type CatalogConfig struct {
	Services []ServiceConfig `yaml:"services"`
}

// ServiceConfig describes one consular service with bilingual display
// names and the document checklist shown to applicants.
type ServiceConfig struct {
	ID             string   `yaml:"id" json:"id"`
	TitleAr        string   `yaml:"title_ar" json:"titleAr"`
	TitleEn        string   `yaml:"title_en" json:"titleEn"`
	Icon           string   `yaml:"icon" json:"icon"`
	Available      bool     `yaml:"available" json:"isAvailable"`
	RequirementsAr []string `yaml:"requirements_ar" json:"-"`
	RequirementsEn []string `yaml:"requirements_en" json:"-"`
}

func (c CatalogConfig) Service(id string) (ServiceConfig, bool) {
	for _, s := range c.Services {
		if s.ID == id {
			return s, true
		}
	}
	return ServiceConfig{}, false
}

func (c CatalogConfig) ServiceIDs() []string {
	ids := make([]string, 0, len(c.Services))
	for _, s := range c.Services {
		ids = append(ids, s.ID)
	}
	return ids
}

// Default returns the configuration the consulate portal ships with;
// LoadConfig overlays the YAML file on top of it.
func Default() *Config {
	return &Config{
		HTTP:    HTTPConfig{Address: ":8080"},
		Storage: StorageConfig{Driver: "postgres", AppointmentsKey: "consulate:appointments"},
		Database: DatabaseConfig{
			Host: "localhost", Port: 5432, User: "consulate", Name: "consulate", SSLMode: "disable",
		},
		Redis: RedisConfig{Addr: "localhost:6379"},
		Kafka: KafkaConfig{
			Brokers:            []string{"localhost:9092"},
			AppointmentsTopic:  "appointments",
			NotificationsTopic: "notifications",
			GroupID:            "consulate-worker",
		},
		Booking: BookingConfig{
			SlotCapacity:             3,
			Slots:                    []string{"09:00", "10:00", "11:00", "12:00", "13:00"},
			AvailabilityCacheSeconds: 30,
		},
		Admin:  AdminConfig{SessionTTLMinutes: 60},
		Worker: WorkerConfig{OccupancySweepMinutes: 60, OccupancyDays: 7},
		Catalog: CatalogConfig{
			Services: []ServiceConfig{
				{
					ID: "passport", TitleAr: "تجديد جواز السفر", TitleEn: "Passport Renewal", Icon: "fa-calendar-check", Available: true,
					RequirementsAr: []string{"أصل بطاقة التعريف الوطنية", "جواز السفر القديم", "4 صور خلفية بيضاء", "إثبات إقامة"},
					RequirementsEn: []string{"Original National ID", "Old Passport", "4 Photos (White Background)", "Proof of Residence"},
				},
				{
					ID: "visa", TitleAr: "طلب تأشيرة دخول", TitleEn: "Visa Application", Icon: "fa-passport", Available: true,
					RequirementsAr: []string{"جواز سفر ساري (6 أشهر)", "دعوة رسمية أو حجز فندق", "تأمين طبي", "صورتين شخصيتين"},
					RequirementsEn: []string{"Valid Passport (6 months)", "Official Invitation/Hotel Booking", "Medical Insurance", "2 Photos"},
				},
				{
					ID: "notary", TitleAr: "التوثيقات والوكالات", TitleEn: "Notary & Power of Attorney", Icon: "fa-file-signature", Available: true,
					RequirementsAr: []string{"أصل بطاقة التعريف أو الجواز", "حضور صاحب العلاقة شخصياً", "مسودة الوكالة المراد توثيقها"},
					RequirementsEn: []string{"Original ID or Passport", "Personal Presence of the Applicant", "Draft of the Power of Attorney"},
				},
				{
					ID: "civil", TitleAr: "الحالة المدنية", TitleEn: "Civil Status", Icon: "fa-users", Available: true,
					RequirementsAr: []string{"شهادة الميلاد الأصلية", "دفتر العائلة", "إفادة الزواج (في حال كانت المعاملة تخص الزواج)"},
					RequirementsEn: []string{"Original Birth Certificate", "Family Book", "Marriage Affidavit (for marriage-related tasks)"},
				},
			},
		},
	}
}

func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}
