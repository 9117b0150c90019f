package store

import "strconv"

type seedFile struct {
	name   string
	header []string
	rows   [][]string
}

// seedFiles returns the bundled demo dataset: two classes, three teachers,
// a pinned science lab and a 5x6 weekly grid. Small, solvable and handy for
// first runs and tests.
func seedFiles() []seedFile {
	var slots [][]string
	for d := 1; d <= 5; d++ {
		for p := 1; p <= 6; p++ {
			slots = append(slots, []string{strconv.Itoa(d), strconv.Itoa(p)})
		}
	}

	return []seedFile{
		{
			name:   teachersFile,
			header: []string{"teacher_id", "name"},
			rows: [][]string{
				{"T1", "Rahman"},
				{"T2", "Akter"},
				{"T3", "Saha"},
			},
		},
		{
			name:   classesFile,
			header: []string{"class_id", "name", "size"},
			rows: [][]string{
				{"C7A", "Class 7A", "28"},
				{"C7B", "Class 7B", "26"},
			},
		},
		{
			name:   roomsFile,
			header: []string{"room_id", "name", "capacity"},
			rows: [][]string{
				{"R1", "Room 1", "30"},
				{"R2", "Room 2", "30"},
				{"Lab", "Science Lab", "28"},
			},
		},
		{
			name:   subjectsFile,
			header: []string{"subject_id", "name"},
			rows: [][]string{
				{"Math", "Mathematics"},
				{"Sci", "Science"},
				{"Eng", "English"},
			},
		},
		{
			name:   curriculumFile,
			header: []string{"line_id", "class_id", "subject_id", "teacher_id", "periods_per_week", "room_id"},
			rows: [][]string{
				{"L1", "C7A", "Math", "T1", "4", ""},
				{"L2", "C7A", "Sci", "T2", "3", "Lab"},
				{"L3", "C7A", "Eng", "T3", "3", ""},
				{"L4", "C7B", "Math", "T1", "4", ""},
				{"L5", "C7B", "Sci", "T2", "3", "Lab"},
				{"L6", "C7B", "Eng", "T3", "3", ""},
			},
		},
		{
			name:   timeslotsFile,
			header: []string{"day", "period"},
			rows:   slots,
		},
		{
			name:   unavailabilityFile,
			header: []string{"teacher_id", "day", "period"},
			rows: [][]string{
				{"T2", "5", "6"},
			},
		},
	}
}
