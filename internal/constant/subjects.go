package constant

// Subject is one entry of the fixed ECE course catalog. The backend expects
// the subject NAME on chat requests, never the id.
type Subject struct {
	Id       string
	Name     string
	Code     string
	Year     string
	Semester string
}

var Semesters = []string{"1", "2"}

var Years = []string{"1", "2", "3", "4"}

var Subjects = []Subject{
	// Year 1, Semester 1
	{Id: "1", Name: "Basic Electronics", Code: "ECE101", Year: "1", Semester: "1"},
	{Id: "2", Name: "Digital Logic Design", Code: "ECE102", Year: "1", Semester: "1"},
	{Id: "3", Name: "Programming Fundamentals", Code: "ECE103", Year: "1", Semester: "1"},

	// Year 1, Semester 2
	{Id: "4", Name: "Circuit Theory", Code: "ECE104", Year: "1", Semester: "2"},
	{Id: "5", Name: "Electronic Devices", Code: "ECE105", Year: "1", Semester: "2"},
	{Id: "6", Name: "Data Structures", Code: "ECE106", Year: "1", Semester: "2"},

	// Year 2, Semester 1
	{Id: "7", Name: "Digital Electronics", Code: "ECE201", Year: "2", Semester: "1"},
	{Id: "8", Name: "Communication Systems", Code: "ECE202", Year: "2", Semester: "1"},
	{Id: "9", Name: "Signal Processing", Code: "ECE203", Year: "2", Semester: "1"},

	// Year 2, Semester 2
	{Id: "10", Name: "Analog_Communication", Code: "ECE204", Year: "2", Semester: "2"},
	{Id: "11", Name: "Analog_Circuits", Code: "ECE205", Year: "2", Semester: "2"},
	{Id: "12", Name: "Control Systems", Code: "ECE206", Year: "2", Semester: "2"},

	// Year 3, Semester 1
	{Id: "13", Name: "Microprocessor", Code: "ECE301", Year: "3", Semester: "1"},
	{Id: "14", Name: "Analog_CMOS", Code: "ECE302", Year: "3", Semester: "1"},
	{Id: "15", Name: "Digital_Communication", Code: "ECE303", Year: "3", Semester: "1"},
	{Id: "16", Name: "Antena", Code: "ECE304", Year: "3", Semester: "1"},
	{Id: "17", Name: "COA", Code: "ECE305", Year: "3", Semester: "1"},
	{Id: "18", Name: "Control_Systems", Code: "ECE306", Year: "3", Semester: "1"},

	// Year 3, Semester 2
	{Id: "19", Name: "Optical Communications", Code: "ECE307", Year: "3", Semester: "2"},
	{Id: "20", Name: "Satellite Communications", Code: "ECE308", Year: "3", Semester: "2"},
	{Id: "21", Name: "Embedded Systems", Code: "ECE309", Year: "3", Semester: "2"},

	// Year 4, Semester 1
	{Id: "22", Name: "Advanced Digital Systems", Code: "ECE401", Year: "4", Semester: "1"},
	{Id: "23", Name: "RF Engineering", Code: "ECE402", Year: "4", Semester: "1"},
	{Id: "24", Name: "IoT Systems", Code: "ECE403", Year: "4", Semester: "1"},

	// Year 4, Semester 2
	{Id: "25", Name: "Advanced Communication Systems", Code: "ECE404", Year: "4", Semester: "2"},
	{Id: "26", Name: "Digital Image Processing", Code: "ECE405", Year: "4", Semester: "2"},
	{Id: "27", Name: "Project Work", Code: "ECE406", Year: "4", Semester: "2"},
}

// FindSubject looks a subject up by id. Returns nil when absent.
func FindSubject(id string) *Subject {
	for i := range Subjects {
		if Subjects[i].Id == id {
			return &Subjects[i]
		}
	}
	return nil
}

// SubjectName resolves the display name for a subject id, empty when unknown.
func SubjectName(id string) string {
	if s := FindSubject(id); s != nil {
		return s.Name
	}
	return ""
}

// SubjectIdByName resolves a catalog id from a subject name; history
// records reference subjects by name. Empty when unknown.
func SubjectIdByName(name string) string {
	for i := range Subjects {
		if Subjects[i].Name == name {
			return Subjects[i].Id
		}
	}
	return ""
}

// FilterSubjects narrows the catalog by the selected year and semester.
// Nothing is offered until at least one of the two is chosen.
func FilterSubjects(year, semester string) []Subject {
	if year == "" && semester == "" {
		return nil
	}
	var out []Subject
	for _, s := range Subjects {
		if year != "" && s.Year != year {
			continue
		}
		if semester != "" && s.Semester != semester {
			continue
		}
		out = append(out, s)
	}
	return out
}
