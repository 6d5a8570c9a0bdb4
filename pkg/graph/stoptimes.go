package graph

// Stop times collapse the route's point sequence to the points where
// the vehicle actually halts. Consecutive points belonging to the same
// stop area count as one halt, running time between them becomes
// dwell time at that halt.

type haltKey struct {
	stopArea bool
	id       int64
}

func haltKeyForPoint(point *NetworkPoint) haltKey {
	if point.StopArea != nil {
		return haltKey{stopArea: true, id: point.StopArea.ID}
	}
	return haltKey{id: point.ID}
}

func buildStopTimes(route *Route, profile *TimeProfile) []*StopTime {
	if len(route.Points) == 0 || len(profile.Entries) != len(route.Points) {
		return nil
	}

	var stopTimes []*StopTime

	for i, entry := range profile.Entries {
		point := route.Points[i].Point

		switch {
		case i == 0:
			stopTimes = append(stopTimes, &StopTime{Point: point})
		case entry.RunningTime > 0:
			last := stopTimes[len(stopTimes)-1]
			if haltKeyForPoint(point) != haltKeyForPoint(last.Point) {
				stopTimes = append(stopTimes, &StopTime{
					Point:         point,
					ArrivalOffset: last.ArrivalOffset + last.Dwell + entry.RunningTime,
				})
			} else {
				last.Dwell += entry.RunningTime
			}
		case i == len(profile.Entries)-1:
			// Zero running time into the final point still yields an
			// arrival record when the point is a different halt.
			last := stopTimes[len(stopTimes)-1]
			if haltKeyForPoint(point) != haltKeyForPoint(last.Point) {
				stopTimes = append(stopTimes, &StopTime{
					Point:         point,
					ArrivalOffset: last.ArrivalOffset + last.Dwell,
				})
			}
		}

		if entry.DwellTime > 0 {
			stopTimes[len(stopTimes)-1].Dwell += entry.DwellTime
		}
	}

	return stopTimes
}
