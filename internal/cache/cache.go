package cache

import (
	"sync"
	"time"
)

// ============================================================================
// CACHE SERVICE - IN-MEMORY CACHING CON TTL
// ============================================================================
// Caché thread-safe con expiración automática para las lecturas de
// referencia del motor (rutas, paraderos, horarios, snapshots del
// planner). Los datos de referencia cambian poco: cachear agresivo
// evita re-recorrer cadenas enlazadas y re-proyectar polilíneas en
// cada request.
//
// Uso:
//   cache := NewCache(5*time.Minute, 10*time.Minute)
//   cache.Set("route:12:forward", routeData)
//   if data, found := cache.Get("route:12:forward"); found {
//       return data
//   }

// Item representa un elemento en caché con timestamp de expiración
type Item struct {
	Value      interface{}
	Expiration int64 // Unix timestamp (ns)
}

// Cache es un almacén thread-safe de key-value con TTL
type Cache struct {
	items             map[string]Item
	mu                sync.RWMutex
	defaultExpiration time.Duration
	cleanupInterval   time.Duration
	stopCleanup       chan bool
}

// NewCache crea una instancia con TTL por defecto y limpieza periódica
func NewCache(defaultExpiration, cleanupInterval time.Duration) *Cache {
	c := &Cache{
		items:             make(map[string]Item),
		defaultExpiration: defaultExpiration,
		cleanupInterval:   cleanupInterval,
		stopCleanup:       make(chan bool),
	}

	go c.startCleanupTimer()

	return c
}

// Set almacena un valor con la expiración por defecto
func (c *Cache) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.defaultExpiration)
}

// SetWithTTL almacena un valor con una expiración específica
func (c *Cache) SetWithTTL(key string, value interface{}, duration time.Duration) {
	var expiration int64

	if duration > 0 {
		expiration = time.Now().Add(duration).UnixNano()
	}

	c.mu.Lock()
	c.items[key] = Item{
		Value:      value,
		Expiration: expiration,
	}
	c.mu.Unlock()
}

// Get recupera un valor del caché.
// Retorna (valor, true) si existe y no ha expirado.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	item, found := c.items[key]
	c.mu.RUnlock()

	if !found {
		return nil, false
	}

	if item.Expiration > 0 && time.Now().UnixNano() > item.Expiration {
		c.Delete(key)
		return nil, false
	}

	return item.Value, true
}

// Delete elimina un key del caché
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// DeletePrefix elimina todas las keys que empiezan con el prefijo dado.
// Útil para invalidar grupos (ej: "route:" invalida todas las rutas)
func (c *Cache) DeletePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for key := range c.items {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(c.items, key)
			count++
		}
	}
	return count
}

// Clear limpia completamente el caché
func (c *Cache) Clear() {
	c.mu.Lock()
	c.items = make(map[string]Item)
	c.mu.Unlock()
}

// Count retorna el número de items en caché (incluye expirados)
func (c *Cache) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Stats retorna estadísticas del caché
type Stats struct {
	TotalItems   int
	ExpiredItems int
	ValidItems   int
}

// GetStats retorna estadísticas actuales del caché
func (c *Cache) GetStats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := Stats{
		TotalItems: len(c.items),
	}

	now := time.Now().UnixNano()
	for _, item := range c.items {
		if item.Expiration > 0 && now > item.Expiration {
			stats.ExpiredItems++
		} else {
			stats.ValidItems++
		}
	}

	return stats
}

// startCleanupTimer ejecuta limpieza periódica de items expirados
func (c *Cache) startCleanupTimer() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.deleteExpired()
		case <-c.stopCleanup:
			return
		}
	}
}

// deleteExpired elimina todos los items expirados
func (c *Cache) deleteExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now().UnixNano()
	for key, item := range c.items {
		if item.Expiration > 0 && now > item.Expiration {
			delete(c.items, key)
		}
	}
}

// Stop detiene la limpieza automática
func (c *Cache) Stop() {
	c.stopCleanup <- true
}

// ============================================================================
// CACHE PRESETS - CACHÉS PRE-CONFIGURADOS POR TIPO DE DATO
// ============================================================================

var (
	// RoutesCache - rutas con secuencias reconstruidas (TTL: 5 minutos)
	RoutesCache *Cache

	// StopsCache - paraderos y búsquedas espaciales (TTL: 5 minutos)
	StopsCache *Cache

	// SchedulesCache - horarios y tablas de salidas (TTL: 2 minutos)
	SchedulesCache *Cache

	// PlannerCache - snapshot completo de rutas para el planner
	// (TTL: 5 minutos; reconstruirlo recorre todas las rutas activas)
	PlannerCache *Cache
)

// InitCaches inicializa todos los cachés con sus configuraciones
func InitCaches() {
	RoutesCache = NewCache(5*time.Minute, 10*time.Minute)
	StopsCache = NewCache(5*time.Minute, 10*time.Minute)
	SchedulesCache = NewCache(2*time.Minute, 5*time.Minute)
	PlannerCache = NewCache(5*time.Minute, 10*time.Minute)
}

// StopCaches detiene todos los cachés
func StopCaches() {
	for _, c := range []*Cache{RoutesCache, StopsCache, SchedulesCache, PlannerCache} {
		if c != nil {
			c.Stop()
		}
	}
}

// ClearAllCaches limpia todos los cachés
func ClearAllCaches() {
	for _, c := range []*Cache{RoutesCache, StopsCache, SchedulesCache, PlannerCache} {
		if c != nil {
			c.Clear()
		}
	}
}

// GetAllCacheStats retorna estadísticas de todos los cachés
func GetAllCacheStats() map[string]Stats {
	stats := make(map[string]Stats)

	if RoutesCache != nil {
		stats["routes"] = RoutesCache.GetStats()
	}
	if StopsCache != nil {
		stats["stops"] = StopsCache.GetStats()
	}
	if SchedulesCache != nil {
		stats["schedules"] = SchedulesCache.GetStats()
	}
	if PlannerCache != nil {
		stats["planner"] = PlannerCache.GetStats()
	}

	return stats
}
