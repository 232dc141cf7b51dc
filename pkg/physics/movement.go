package physics

// MovementState tracks the controlled entity's kinematics
type MovementState struct {
	Position Vector2D
	Velocity Vector2D
	Facing   float64 // radians
	MaxSpeed float64
}

// Speed returns the magnitude of the current velocity
func (s MovementState) Speed() float64 {
	return s.Velocity.Length()
}

// UpdateMovement advances state by one tick from a raw intent vector and
// an aim point. Velocity is integrated first using the current facing,
// then the facing steers toward the aim, then position moves by the new
// velocity.
func UpdateMovement(state *MovementState, intent, aim Vector2D, deltaTime float64, tuning Tuning) {
	state.Velocity = IntegrateVelocity(intent, state.Velocity, state.Facing, state.MaxSpeed, deltaTime, tuning)

	desired := DesiredAngle(state.Position, aim, tuning.FacingOffset)
	state.Facing = Steer(state.Facing, desired, tuning.TurnRate, deltaTime, tuning.Steering)

	state.Position = state.Position.Add(state.Velocity)
}
