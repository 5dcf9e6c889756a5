package service

import (
	"medassist/internal/domain/entity"
)

// defaultEntries is the built-in symptom table. Weights sit in four bands:
// critical 0.9-1.0 (forced critical), urgent 0.5-0.89, moderate 0.3-0.49,
// low 0.1-0.29. Phrases must already be lowercase.
func defaultEntries() []entity.SymptomEntry {
	return []entity.SymptomEntry{
		// Critical band: any of these alone forces a CRITICAL tier.
		{Phrase: "chest pain", Weight: 1.0, Department: "Cardiology", ForcesCritical: true, AmbulanceOverride: true},
		{Phrase: "heart attack", Weight: 1.0, Department: "Cardiology", ForcesCritical: true, AmbulanceOverride: true},
		{Phrase: "cardiac arrest", Weight: 1.0, Department: "Cardiology", ForcesCritical: true, AmbulanceOverride: true},
		{Phrase: "not breathing", Weight: 1.0, Department: "Pulmonology", ForcesCritical: true, AmbulanceOverride: true},
		{Phrase: "stopped breathing", Weight: 1.0, Department: "Pulmonology", ForcesCritical: true, AmbulanceOverride: true},
		{Phrase: "cant breathe", Weight: 0.95, Department: "Pulmonology", ForcesCritical: true, AmbulanceOverride: true},
		{Phrase: "choking", Weight: 0.95, Department: "Pulmonology", ForcesCritical: true, AmbulanceOverride: true},
		{Phrase: "severe bleeding", Weight: 0.95, Department: "Emergency", ForcesCritical: true, AmbulanceOverride: true},
		{Phrase: "unconscious", Weight: 1.0, Department: "Emergency", ForcesCritical: true, AmbulanceOverride: true},
		{Phrase: "seizure", Weight: 0.95, Department: "Neurology", ForcesCritical: true, AmbulanceOverride: true},
		{Phrase: "stroke", Weight: 1.0, Department: "Neurology", ForcesCritical: true, AmbulanceOverride: true},
		{Phrase: "anaphylaxis", Weight: 1.0, Department: "Emergency", ForcesCritical: true, AmbulanceOverride: true},
		{Phrase: "overdose", Weight: 0.95, Department: "Emergency", ForcesCritical: true, AmbulanceOverride: true},
		{Phrase: "poisoning", Weight: 0.95, Department: "Emergency", ForcesCritical: true, AmbulanceOverride: true},
		{Phrase: "severe burn", Weight: 0.9, Department: "Emergency", ForcesCritical: true, AmbulanceOverride: true},
		{Phrase: "gunshot", Weight: 1.0, Department: "Emergency", ForcesCritical: true, AmbulanceOverride: true},
		{Phrase: "stab wound", Weight: 1.0, Department: "Emergency", ForcesCritical: true, AmbulanceOverride: true},

		// Urgent band.
		{Phrase: "difficulty breathing", Weight: 0.85, Department: "Pulmonology", AmbulanceOverride: true},
		{Phrase: "shortness of breath", Weight: 0.8, Department: "Pulmonology"},
		{Phrase: "paralysis", Weight: 0.85, Department: "Neurology", AmbulanceOverride: true},
		{Phrase: "high fever", Weight: 0.7, Department: "General Medicine"},
		{Phrase: "severe headache", Weight: 0.7, Department: "Neurology"},
		{Phrase: "blurred vision", Weight: 0.65, Department: "Ophthalmology"},
		{Phrase: "broken bone", Weight: 0.75, Department: "Orthopedics"},
		{Phrase: "fracture", Weight: 0.75, Department: "Orthopedics"},
		{Phrase: "deep cut", Weight: 0.7, Department: "Emergency"},
		{Phrase: "persistent vomiting", Weight: 0.65, Department: "Gastroenterology"},
		{Phrase: "blood in stool", Weight: 0.7, Department: "Gastroenterology"},
		{Phrase: "blood in urine", Weight: 0.65, Department: "Urology"},
		{Phrase: "severe abdominal pain", Weight: 0.75, Department: "Gastroenterology"},
		{Phrase: "allergic reaction", Weight: 0.7, Department: "Emergency"},
		{Phrase: "fainting", Weight: 0.65, Department: "General Medicine"},
		{Phrase: "dehydration", Weight: 0.6, Department: "General Medicine"},
		{Phrase: "chest tightness", Weight: 0.75, Department: "Cardiology"},
		{Phrase: "confusion", Weight: 0.7, Department: "Neurology"},
		{Phrase: "numbness", Weight: 0.6, Department: "Neurology"},
		{Phrase: "dizziness", Weight: 0.55, Department: "General Medicine"},

		// Moderate band.
		{Phrase: "fever", Weight: 0.4, Department: "General Medicine"},
		{Phrase: "vomiting", Weight: 0.45, Department: "Gastroenterology"},
		{Phrase: "back pain", Weight: 0.4, Department: "Orthopedics"},
		{Phrase: "stomach pain", Weight: 0.4, Department: "Gastroenterology"},
		{Phrase: "headache", Weight: 0.35, Department: "Neurology"},
		{Phrase: "body pain", Weight: 0.35, Department: "General Medicine"},
		{Phrase: "ear pain", Weight: 0.35, Department: "ENT"},
		{Phrase: "joint pain", Weight: 0.35, Department: "Orthopedics"},
		{Phrase: "nausea", Weight: 0.35, Department: "Gastroenterology"},
		{Phrase: "diarrhea", Weight: 0.35, Department: "Gastroenterology"},
		{Phrase: "cough", Weight: 0.3, Department: "Pulmonology"},
		{Phrase: "sore throat", Weight: 0.3, Department: "ENT"},
		{Phrase: "rash", Weight: 0.3, Department: "Dermatology"},
		{Phrase: "toothache", Weight: 0.3, Department: "Dental"},

		// Low band.
		{Phrase: "anxiety", Weight: 0.25, Department: "Psychiatry"},
		{Phrase: "mild headache", Weight: 0.2, Department: "Neurology"},
		{Phrase: "fatigue", Weight: 0.2, Department: "General Medicine"},
		{Phrase: "stress", Weight: 0.2, Department: "Psychiatry"},
		{Phrase: "cold", Weight: 0.15, Department: "General Medicine"},
		{Phrase: "insomnia", Weight: 0.15, Department: "Psychiatry"},
		{Phrase: "itching", Weight: 0.15, Department: "Dermatology"},
		{Phrase: "runny nose", Weight: 0.1, Department: "ENT"},
		{Phrase: "minor cut", Weight: 0.1, Department: "General Medicine"},
		{Phrase: "bruise", Weight: 0.1, Department: "General Medicine"},
	}
}

// defaultFirstAid maps phrases to the guidance shown while help is on the way.
// Looked up by the highest-weight matched entry.
func defaultFirstAid() map[string][]string {
	return map[string][]string{
		"chest pain": {
			"Have the patient sit upright and stay calm",
			"Loosen any tight clothing",
			"If the patient has prescribed nitroglycerin, help them take it",
			"If the patient becomes unresponsive, begin CPR",
		},
		"heart attack": {
			"Have the patient sit upright and stay calm",
			"Loosen any tight clothing",
			"If the patient becomes unresponsive, begin CPR",
		},
		"cardiac arrest": {
			"Begin CPR immediately",
			"Send someone for a defibrillator if available",
		},
		"not breathing": {
			"Check airway for obstructions",
			"Tilt head back, lift chin to open airway",
			"Begin rescue breathing / CPR",
		},
		"stopped breathing": {
			"Check airway for obstructions",
			"Begin rescue breathing / CPR",
		},
		"cant breathe": {
			"Help the patient sit upright for easier breathing",
			"Loosen any tight clothing",
			"Check airway for obstructions",
		},
		"choking": {
			"Perform the Heimlich maneuver (abdominal thrusts)",
			"If the patient loses consciousness, begin CPR",
		},
		"severe bleeding": {
			"Apply direct pressure with a clean cloth",
			"Elevate the wound above heart level if possible",
			"Do not remove embedded objects",
		},
		"seizure": {
			"Clear the area around the patient of hard objects",
			"Do not restrain or put anything in their mouth",
			"Turn the patient on their side after the seizure stops",
			"Time the seizure and report if it lasts over 5 minutes",
		},
		"severe burn": {
			"Cool the burn under cool running water for 10+ minutes",
			"Do not apply ice, butter, or ointments",
			"Cover with a clean, non-stick dressing",
		},
		"fracture": {
			"Immobilize the injured area, do not try to realign",
			"Apply ice wrapped in cloth to reduce swelling",
		},
		"broken bone": {
			"Immobilize the injured area, do not try to realign",
			"Apply ice wrapped in cloth to reduce swelling",
		},
		"high fever": {
			"Stay hydrated with plenty of fluids",
			"Rest in a cool, comfortable environment",
			"Use a damp cloth on the forehead for comfort",
		},
		"fever": {
			"Stay hydrated with plenty of fluids",
			"Rest in a cool, comfortable environment",
		},
		"allergic reaction": {
			"Use an epinephrine auto-injector if available and trained",
			"Help the patient sit upright for easier breathing",
			"Remove the known allergen if identifiable",
		},
		"anaphylaxis": {
			"Use an epinephrine auto-injector immediately if available",
			"Help the patient sit upright for easier breathing",
		},
		"deep cut": {
			"Apply direct pressure with a clean cloth",
			"Do not remove embedded objects",
		},
	}
}
