package microbe

// builtin is the demo table shipped with the binary.
var builtin = []Record{
	{Name: "Streptococcus", Disease: "Strep Throat", Symptoms: "Sore throat, fever", Risk: RiskModerate},
	{Name: "Candida", Disease: "Oral Thrush", Symptoms: "White patches in mouth, discomfort", Risk: RiskModerate},
	{Name: "H. pylori", Disease: "Peptic Ulcer", Symptoms: "Stomach pain, nausea", Risk: RiskHigh},
	{Name: "E. coli", Disease: "Food Poisoning", Symptoms: "Diarrhea, cramps", Risk: RiskHigh},
	{Name: "Normal Flora", Disease: "None", Symptoms: "Healthy microbiota", Risk: RiskLow},
}

// Default returns the built-in knowledge base.
func Default() *KnowledgeBase {
	kb, err := New(builtin...)
	if err != nil {
		panic("microbe: builtin table: " + err.Error())
	}
	return kb
}
