package config

import (
	"errors"
	"fmt"
)

// #region validate

// Validate ensures the configuration can drive a session. It runs once at
// session start: a threshold broken here would otherwise fail identically
// on every frame.
func (c *Config) Validate() error {
	if err := c.validateSmoother(); err != nil {
		return err
	}
	if err := c.validateFSM(); err != nil {
		return err
	}
	if err := c.validateForm(); err != nil {
		return err
	}
	if err := c.validateFeedback(); err != nil {
		return err
	}
	if err := c.validateSpeech(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSmoother() error {
	switch c.Smoother.Method {
	case "ema":
		if c.Smoother.Alpha <= 0 || c.Smoother.Alpha > 1 {
			return fmt.Errorf("smoother.alpha must be in (0, 1], got %g", c.Smoother.Alpha)
		}
	case "kalman":
		if c.Smoother.Q <= 0 || c.Smoother.R <= 0 {
			return errors.New("smoother.q and smoother.r must be positive")
		}
	default:
		return fmt.Errorf("smoother.method must be \"ema\" or \"kalman\", got %q", c.Smoother.Method)
	}
	return nil
}

func (c *Config) validateFSM() error {
	if c.Squat.StandKnee <= c.Squat.BottomKnee {
		return errors.New("squat.stand_knee must exceed squat.bottom_knee")
	}
	if c.Squat.VelEps <= 0 {
		return errors.New("squat.vel_eps must be positive")
	}
	if c.Pushup.TopElbow <= c.Pushup.BottomElbow {
		return errors.New("pushup.top_elbow must exceed pushup.bottom_elbow")
	}
	if c.Pushup.VelEps <= 0 {
		return errors.New("pushup.vel_eps must be positive")
	}
	if c.Lunge.StandFrontKnee <= c.Lunge.BottomFrontKnee {
		return errors.New("lunge.stand_front_knee must exceed lunge.bottom_front_knee")
	}
	if c.Lunge.StandBackKnee <= c.Lunge.BottomBackKnee {
		return errors.New("lunge.stand_back_knee must exceed lunge.bottom_back_knee")
	}
	if c.Lunge.VelEps <= 0 {
		return errors.New("lunge.vel_eps must be positive")
	}
	return nil
}

func (c *Config) validateForm() error {
	if c.Form.Squat.SymKneeMax <= 0 {
		return errors.New("form.squat.sym_knee_max must be positive")
	}
	if c.Form.Squat.BottomKneeMax <= 0 {
		return errors.New("form.squat.bottom_knee_max must be positive")
	}
	if c.Form.Pushup.PlankMin <= 0 {
		return errors.New("form.pushup.plank_min must be positive")
	}
	if c.Form.Pushup.BottomElbowMax <= 0 {
		return errors.New("form.pushup.bottom_elbow_max must be positive")
	}
	if c.Form.Lunge.BottomFrontKneeMax <= 0 {
		return errors.New("form.lunge.bottom_front_knee_max must be positive")
	}
	if c.Form.Lunge.BottomBackKneeMax <= 0 {
		return errors.New("form.lunge.bottom_back_knee_max must be positive")
	}
	return nil
}

func (c *Config) validateFeedback() error {
	if c.Feedback.PraiseThreshold < 0 || c.Feedback.PraiseThreshold > 1 {
		return fmt.Errorf("feedback.praise_threshold must be in [0, 1], got %g", c.Feedback.PraiseThreshold)
	}
	if _, err := c.FeedbackConfig(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSpeech() error {
	if c.Speech.Enabled && c.Speech.Command == "" {
		return errors.New("speech.command must be set when speech.enabled is true")
	}
	if c.Speech.MinGapSeconds < 0 {
		return errors.New("speech.min_gap_seconds must not be negative")
	}
	return nil
}

// #endregion validate
