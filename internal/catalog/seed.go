package catalog

import (
	"stepladder/practice-app/internal/domain"
)

func bound(v float64) *float64 { return &v }

// seedTemplates is the built-in worksheet catalog. Templates are immutable
// for the lifetime of the process; editing them requires a new release.
func seedTemplates() []domain.WorksheetTemplate {
	return []domain.WorksheetTemplate{
		{
			ID:             "cbt-thought-record",
			Title:          "5-Column Thought Record",
			Modality:       domain.ModalityCBT,
			Modules:        []string{"Cognitive Restructuring"},
			ProblemDomains: []string{"Depression", "Anxiety"},
			EvidenceTag:    "CBT for depression",
			Description:    "Identify an automatic thought, weigh the evidence, and arrive at a more balanced alternative.",
			Fields: []domain.WorksheetField{
				{ID: "entry_date", Label: "Date", Type: domain.FieldDate, Required: true},
				{ID: "situation", Label: "Situation", Type: domain.FieldTextarea, Required: true,
					Description: "What was happening when the feeling started?",
					Placeholder: "Where were you? Who were you with?"},
				{ID: "automatic_thought", Label: "Automatic thought", Type: domain.FieldTextarea, Required: true,
					Placeholder: "What went through your mind?"},
				{ID: "emotions", Label: "Emotions", Type: domain.FieldCheckboxGroup,
					Options: []domain.WorksheetFieldOption{
						{Value: "sad", Label: "Sad"},
						{Value: "anxious", Label: "Anxious"},
						{Value: "angry", Label: "Angry"},
						{Value: "ashamed", Label: "Ashamed"},
						{Value: "guilty", Label: "Guilty"},
					}},
				{ID: "emotion_intensity", Label: "Emotion intensity", Type: domain.FieldRating0To10, Required: true,
					Description: "0 = barely noticeable, 10 = the most intense it has ever been"},
				{ID: "evidence_for", Label: "Evidence for the thought", Type: domain.FieldTextarea},
				{ID: "evidence_against", Label: "Evidence against the thought", Type: domain.FieldTextarea},
				{ID: "balanced_thought", Label: "Balanced thought", Type: domain.FieldTextarea, Required: true},
				{ID: "outcome_intensity", Label: "Emotion intensity after", Type: domain.FieldRating0To10},
			},
		},
		{
			ID:             "cbt-behavioral-activation",
			Title:          "Behavioral Activation Plan",
			Modality:       domain.ModalityCBT,
			Modules:        []string{"Behavioral Activation"},
			ProblemDomains: []string{"Depression"},
			EvidenceTag:    "Behavioral activation for depression",
			Description:    "Plan one valued activity, predict how rewarding it will be, then compare with how it actually felt.",
			Fields: []domain.WorksheetField{
				{ID: "activity", Label: "Planned activity", Type: domain.FieldText, Required: true,
					ClinicianConfigurable: true,
					Placeholder:           "e.g. 20 minute walk before lunch"},
				{ID: "scheduled_date", Label: "Scheduled date", Type: domain.FieldDate, Required: true,
					ClinicianConfigurable: true},
				{ID: "scheduled_time", Label: "Scheduled time", Type: domain.FieldTime},
				{ID: "predicted_enjoyment", Label: "Predicted enjoyment", Type: domain.FieldRating0To10},
				{ID: "completed", Label: "I did the activity", Type: domain.FieldCheckbox},
				{ID: "actual_enjoyment", Label: "Actual enjoyment", Type: domain.FieldRating0To10},
				{ID: "barriers", Label: "What got in the way?", Type: domain.FieldTextarea,
					Description: "Fill this in if the activity did not happen as planned."},
			},
		},
		{
			ID:             "erp-exposure-run",
			Title:          "Exposure Practice Log",
			Modality:       domain.ModalityERP,
			Modules:        []string{"Exposure & Response Prevention"},
			ProblemDomains: []string{"OCD", "Anxiety"},
			EvidenceTag:    "ERP for OCD",
			Description:    "Log a single exposure run with SUDS ratings before, at peak, and after.",
			Fields: []domain.WorksheetField{
				{ID: "exposure_task", Label: "Exposure task", Type: domain.FieldTextarea, Required: true,
					ClinicianConfigurable: true,
					Description:           "The agreed exposure from your hierarchy."},
				{ID: "run_date", Label: "Date", Type: domain.FieldDate, Required: true},
				{ID: "duration_minutes", Label: "Duration (minutes)", Type: domain.FieldNumber,
					Min: bound(0), Max: bound(480)},
				{ID: "suds_before", Label: "SUDS before", Type: domain.FieldNumber, Required: true,
					Min: bound(0), Max: bound(100)},
				{ID: "suds_peak", Label: "SUDS at peak", Type: domain.FieldNumber,
					Min: bound(0), Max: bound(100)},
				{ID: "suds_after", Label: "SUDS after", Type: domain.FieldNumber, Required: true,
					Min: bound(0), Max: bound(100)},
				{ID: "did_ritual", Label: "I performed a ritual or compulsion", Type: domain.FieldCheckbox},
				{ID: "ritual_notes", Label: "Ritual notes", Type: domain.FieldTextarea,
					Placeholder: "What did you do, and what triggered it?"},
				{ID: "urge_strength", Label: "Urge to ritualize", Type: domain.FieldRating0To10},
			},
		},
		{
			ID:             "dbt-diary-card",
			Title:          "DBT Diary Card",
			Modality:       domain.ModalityDBT,
			Modules:        []string{"Distress Tolerance", "Emotion Regulation"},
			ProblemDomains: []string{"Emotion Regulation", "Self-Harm"},
			EvidenceTag:    "Standard DBT",
			Description:    "Daily record of emotions, urges, and skills use.",
			Fields: []domain.WorksheetField{
				{ID: "card_date", Label: "Date", Type: domain.FieldDate, Required: true},
				{ID: "emotions_experienced", Label: "Emotions experienced today", Type: domain.FieldMultiSelect,
					Options: []domain.WorksheetFieldOption{
						{Value: "sadness", Label: "Sadness"},
						{Value: "anger", Label: "Anger"},
						{Value: "fear", Label: "Fear"},
						{Value: "shame", Label: "Shame"},
						{Value: "joy", Label: "Joy"},
					}},
				{ID: "strongest_urge", Label: "Strongest urge", Type: domain.FieldSelect,
					Options: []domain.WorksheetFieldOption{
						{Value: "self_harm", Label: "Self-harm"},
						{Value: "substance_use", Label: "Substance use"},
						{Value: "quit_therapy", Label: "Quit therapy"},
						{Value: "none", Label: "None"},
					}},
				{ID: "urge_intensity", Label: "Urge intensity", Type: domain.FieldRating0To10},
				{ID: "skills_used", Label: "Skills used", Type: domain.FieldCheckboxGroup,
					Options: []domain.WorksheetFieldOption{
						{Value: "mindfulness", Label: "Mindfulness"},
						{Value: "distress_tolerance", Label: "Distress tolerance"},
						{Value: "emotion_regulation", Label: "Emotion regulation"},
						{Value: "interpersonal", Label: "Interpersonal effectiveness"},
					}},
				{ID: "skill_helpfulness", Label: "How much did the skills help?", Type: domain.FieldLikert, Required: true,
					Options: []domain.WorksheetFieldOption{
						{Value: "not_at_all", Label: "Not at all"},
						{Value: "a_little", Label: "A little"},
						{Value: "somewhat", Label: "Somewhat"},
						{Value: "quite_a_bit", Label: "Quite a bit"},
						{Value: "very_much", Label: "Very much"},
					}},
				{ID: "notes", Label: "Notes", Type: domain.FieldTextarea},
			},
		},
		{
			ID:             "cbtj-sleep-diary",
			Title:          "Sleep Diary",
			Modality:       domain.ModalityCBTJ,
			Modules:        []string{"Sleep Hygiene", "Stimulus Control"},
			ProblemDomains: []string{"Insomnia"},
			EvidenceTag:    "CBT-I/CBT-J for insomnia",
			Description:    "Morning record of last night's sleep.",
			Fields: []domain.WorksheetField{
				{ID: "diary_date", Label: "Morning of", Type: domain.FieldDate, Required: true},
				{ID: "bed_time", Label: "Time you got into bed", Type: domain.FieldTime, Required: true},
				{ID: "lights_out_time", Label: "Lights-out time", Type: domain.FieldTime},
				{ID: "wake_time", Label: "Final wake time", Type: domain.FieldTime, Required: true},
				{ID: "minutes_to_sleep", Label: "Minutes to fall asleep", Type: domain.FieldNumber,
					Min: bound(0), Max: bound(600)},
				{ID: "night_awakenings", Label: "Times you woke during the night", Type: domain.FieldNumber,
					Min: bound(0), Max: bound(50)},
				{ID: "sleep_quality", Label: "Sleep quality", Type: domain.FieldLikert, Required: true,
					Options: []domain.WorksheetFieldOption{
						{Value: "very_poor", Label: "Very poor"},
						{Value: "poor", Label: "Poor"},
						{Value: "fair", Label: "Fair"},
						{Value: "good", Label: "Good"},
						{Value: "very_good", Label: "Very good"},
					}},
				{ID: "caffeine_after_noon", Label: "Caffeine after noon yesterday", Type: domain.FieldCheckbox},
				{ID: "napped", Label: "Napped during the day", Type: domain.FieldCheckbox},
				{ID: "notes", Label: "Notes", Type: domain.FieldTextarea},
			},
		},
		{
			ID:             "sud-craving-log",
			Title:          "Craving Log",
			Modality:       domain.ModalitySUD,
			Modules:        []string{"Relapse Prevention"},
			ProblemDomains: []string{"Substance Use"},
			EvidenceTag:    "Relapse prevention",
			Description:    "Log a craving episode close to when it happened.",
			Fields: []domain.WorksheetField{
				{ID: "log_date", Label: "Date", Type: domain.FieldDate, Required: true},
				{ID: "log_time", Label: "Time", Type: domain.FieldTime},
				{ID: "substance", Label: "Substance", Type: domain.FieldSelect, Required: true,
					ClinicianConfigurable: true,
					Options: []domain.WorksheetFieldOption{
						{Value: "alcohol", Label: "Alcohol"},
						{Value: "nicotine", Label: "Nicotine"},
						{Value: "cannabis", Label: "Cannabis"},
						{Value: "stimulants", Label: "Stimulants"},
						{Value: "opioids", Label: "Opioids"},
						{Value: "other", Label: "Other"},
					}},
				{ID: "craving_intensity", Label: "Craving intensity", Type: domain.FieldRating0To10, Required: true},
				{ID: "trigger", Label: "Trigger", Type: domain.FieldText,
					Placeholder: "What set the craving off?"},
				{ID: "coping_used", Label: "Coping strategies used", Type: domain.FieldCheckboxGroup,
					Options: []domain.WorksheetFieldOption{
						{Value: "urge_surfing", Label: "Urge surfing"},
						{Value: "called_support", Label: "Called a support person"},
						{Value: "left_situation", Label: "Left the situation"},
						{Value: "distraction", Label: "Distraction"},
					}},
				{ID: "used", Label: "I used", Type: domain.FieldCheckbox},
				{ID: "notes", Label: "Notes", Type: domain.FieldTextarea},
			},
		},
	}
}
