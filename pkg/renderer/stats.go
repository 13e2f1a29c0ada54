package renderer

// RenderStats contains statistics about marching one frame or region
type RenderStats struct {
	TotalPixels  int     // Total number of pixels rendered
	Hits         int     // Rays that converged on a surface
	Misses       int     // Rays that exhausted the step budget
	TotalSteps   int     // Sum of march steps over all rays
	AverageSteps float64 // Average march steps per pixel
	MaxStepsUsed int     // Most steps taken by any single ray
}

// AddRay records the outcome of one pixel's march
func (s *RenderStats) AddRay(result MarchResult) {
	s.TotalPixels++
	if result.Hit {
		s.Hits++
	} else {
		s.Misses++
	}
	s.TotalSteps += result.Steps
	s.MaxStepsUsed = max(s.MaxStepsUsed, result.Steps)
}

// Merge folds another region's statistics into these
func (s *RenderStats) Merge(other RenderStats) {
	s.TotalPixels += other.TotalPixels
	s.Hits += other.Hits
	s.Misses += other.Misses
	s.TotalSteps += other.TotalSteps
	s.MaxStepsUsed = max(s.MaxStepsUsed, other.MaxStepsUsed)
	s.finalize()
}

// HitRatio is the fraction of rays that converged
func (s RenderStats) HitRatio() float64 {
	if s.TotalPixels == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.TotalPixels)
}

func (s *RenderStats) finalize() {
	if s.TotalPixels == 0 {
		s.AverageSteps = 0
		return
	}
	s.AverageSteps = float64(s.TotalSteps) / float64(s.TotalPixels)
}
