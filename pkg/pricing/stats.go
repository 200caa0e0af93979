package pricing

// Stats returns a copy of the pricing API statistics keyed by region
func (c *Catalog) Stats() map[string]APIStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	statsCopy := make(map[string]APIStats, len(c.stats))
	for region, stats := range c.stats {
		statsCopy[region] = *stats
	}
	return statsCopy
}
