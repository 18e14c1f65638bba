package currency

import (
	"strings"
	"sync"
)

// ReferenceCurrency — валюта хранения всех сумм.
const ReferenceCurrency = "USD"

// Converter пересчитывает суммы между валютами по таблице курсов
// относительно USD. Таблица обновляется целиком, чтение конкурентное.
type Converter struct {
	mu    sync.RWMutex
	rates map[string]float64
}

// defaultRates — статическая таблица на случай, когда внешний сервис
// курсов недоступен или не настроен.
var defaultRates = map[string]float64{
	"USD": 1.0,
	"EUR": 0.92,
	"GBP": 0.79,
	"INR": 83.1,
	"JPY": 149.5,
	"AUD": 1.52,
	"CAD": 1.36,
	"RUB": 92.0,
}

// NewConverter создаёт конвертер со статической таблицей курсов.
func NewConverter() *Converter {
	rates := make(map[string]float64, len(defaultRates))
	for code, rate := range defaultRates {
		rates[code] = rate
	}
	return &Converter{rates: rates}
}

// SetRates заменяет таблицу курсов. Курс — количество единиц валюты
// за один USD.
func (c *Converter) SetRates(rates map[string]float64) {
	if len(rates) == 0 {
		return
	}
	normalized := make(map[string]float64, len(rates)+1)
	normalized[ReferenceCurrency] = 1.0
	for code, rate := range rates {
		if rate <= 0 {
			continue
		}
		normalized[strings.ToUpper(code)] = rate
	}

	c.mu.Lock()
	c.rates = normalized
	c.mu.Unlock()
}

// Convert пересчитывает сумму из одной валюты в другую.
// Неизвестная валюта означает курс 1:1 — сумма возвращается как есть.
func (c *Converter) Convert(amount float64, from, to string) float64 {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))
	if from == "" {
		from = ReferenceCurrency
	}
	if to == "" {
		to = ReferenceCurrency
	}
	if from == to {
		return amount
	}

	c.mu.RLock()
	fromRate, okFrom := c.rates[from]
	toRate, okTo := c.rates[to]
	c.mu.RUnlock()

	if !okFrom || !okTo || fromRate <= 0 {
		return amount
	}

	inUSD := amount / fromRate
	return inUSD * toRate
}

// ToReference нормализует сумму в валюту хранения.
func (c *Converter) ToReference(amount float64, from string) float64 {
	return c.Convert(amount, from, ReferenceCurrency)
}
